// Package hal holds the small surface the kernel core needs from the
// machine it runs on: a periodic tick source and a transport for log
// frames. Host builds back these with wall-clock timers and file
// descriptors; embedded ports supply their own.
package hal

// Timer delivers the periodic scheduler tick. Ticks carries a monotonic
// sequence number; consumers that fall behind miss ticks rather than
// observe them late.
type Timer interface {
	Ticks() <-chan uint64
	Stop()
}
