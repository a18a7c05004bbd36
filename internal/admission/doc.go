// Package admission guarantees that the shared OCR engine serves at most one
// requester per community at a time.
//
// A requester either receives a time-boxed reservation immediately or joins a
// FIFO wait list. Claiming a reservation converts it into the community lease;
// releasing the lease promotes the next waiting requester. A reservation that
// expires unused always promotes the next entry, so an abandoned slot can
// never stall the queue, and the expired requester must re-request from the
// back. Queue-position and your-turn notices are dispatched best effort.
package admission
