package mqtt

// Client represents a broker client capable of delivering a payload to a
// bike specific topic. The relay is the only producer; acknowledgments come
// back out-of-band over HTTP.
type Client interface {
	// Publish delivers the payload to the given topic. The implementation
	// owns topic prefixing and retry policy.
	Publish(topic string, payload []byte) error
}
