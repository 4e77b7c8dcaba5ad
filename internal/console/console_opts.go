package console

type ConsoleOpt func(*Console)

// WithReady delays reading input until ready is closed.
func WithReady(ready <-chan struct{}) ConsoleOpt {
	return func(c *Console) {
		c.ready = ready
	}
}

// WithWidth sets the column width output is wrapped to.
func WithWidth(width int) ConsoleOpt {
	return func(c *Console) {
		c.width = width
	}
}
