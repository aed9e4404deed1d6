package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/mkervran/bikefleet/core/mqtt"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	cfg := Config{UseTLS: true}
	if _, err := cfg.LoadTLSConfig(); err == nil {
		t.Fatal("expected error for missing cert paths")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("credentials not applied")
	}
	if !opts.AutoReconnect {
		t.Fatalf("auto reconnect disabled")
	}
}

type fakeToken struct {
	err error
}

func (f *fakeToken) Wait() bool { return true }

func (f *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (f *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (f *fakeToken) Error() error { return f.err }

type fakePaho struct {
	published    []struct{ topic, payload string }
	failsLeft    int
	publishErr   error
	disconnected bool
}

func (f *fakePaho) IsConnected() bool { return !f.disconnected }

func (f *fakePaho) Connect() paho.Token { return &fakeToken{} }

func (f *fakePaho) Disconnect(uint) {}

func (f *fakePaho) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	if f.failsLeft > 0 {
		f.failsLeft--
		return &fakeToken{err: f.publishErr}
	}
	f.published = append(f.published, struct{ topic, payload string }{topic, string(payload.([]byte))})
	return &fakeToken{}
}

func newTestClient(cli pahoClient, prefix string) *PahoClient {
	return &PahoClient{
		cli:        cli,
		prefix:     prefix,
		maxRetries: 2,
		backoff:    time.Millisecond,
		logger:     nopTestLogger{},
	}
}

type nopTestLogger struct{}

func (nopTestLogger) Debugf(string, ...any)         {}
func (nopTestLogger) Debugw(string, map[string]any) {}
func (nopTestLogger) Infof(string, ...any)          {}
func (nopTestLogger) Warnf(string, ...any)          {}
func (nopTestLogger) Errorf(string, ...any)         {}

func TestPublishPrefixesTopic(t *testing.T) {
	cli := &fakePaho{}
	p := newTestClient(cli, "bike/")
	if err := p.Publish("bike7", []byte(`{"command":"stop"}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(cli.published) != 1 {
		t.Fatalf("expected 1 publish got %d", len(cli.published))
	}
	if cli.published[0].topic != "bike/bike7" {
		t.Fatalf("expected prefixed topic got %s", cli.published[0].topic)
	}
}

func TestPublishRetriesThenSucceeds(t *testing.T) {
	cli := &fakePaho{failsLeft: 1, publishErr: errors.New("transient")}
	p := newTestClient(cli, "bike/")
	if err := p.Publish("bike1", []byte("x")); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(cli.published) != 1 {
		t.Fatalf("expected 1 successful publish got %d", len(cli.published))
	}
}

func TestPublishRequiresConnection(t *testing.T) {
	cli := &fakePaho{disconnected: true}
	p := newTestClient(cli, "bike/")
	if err := p.Publish("bike1", []byte("x")); !errors.Is(err, coremqtt.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestPublishExhaustsRetries(t *testing.T) {
	cli := &fakePaho{failsLeft: 10, publishErr: errors.New("down")}
	p := newTestClient(cli, "bike/")
	if err := p.Publish("bike1", []byte("x")); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if len(cli.published) != 0 {
		t.Fatalf("expected no successful publish got %d", len(cli.published))
	}
}
