package messaging

import "time"

type NatsServerOpt func(*NatsServer)

// WithStartTimeout sets the startup timeout for the nats server
func WithStartTimeout(d time.Duration) NatsServerOpt {
	return func(n *NatsServer) {
		n.startupTimeout = d
	}
}

// WithListener makes the server accept local TCP clients on host:port in
// addition to in-process ones. An empty host keeps the loopback default.
func WithListener(host string, port int) NatsServerOpt {
	return func(n *NatsServer) {
		n.listen = true
		if host != "" {
			n.host = host
		}
		n.port = port
	}
}
