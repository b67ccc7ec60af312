// Package platform binds the STWBC86 driver to an interrupt driven I²C
// controller.
//
// Platform implements stwbc86.Bus. It turns the asynchronous, callback based
// transfer API of the hal package into blocking calls bounded by a fixed
// deadline, and carries the workaround for a controller that stays busy
// after a NACK.
//
// Write and WriteRead differ on purpose when the deadline expires. A write
// that never completes is assumed to have hit the stuck-after-NACK condition:
// the controller is forced back to ready and the write reports success. The
// adapter cannot tell a landed write from a lost one; the driver finds out
// through its own protocol (a status poll or a chip info read fails later).
// WriteRead never masks its timeout, since a half finished register
// selection cannot be papered over safely.
package platform
