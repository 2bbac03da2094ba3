package tlb

// CommandList accumulates packets for one command stream. A job owns two:
// the main render command list and an indirect list holding the per-tile
// sublists referenced from the main list through relocations.
//
// CommandList is not safe for concurrent use; recording is single-threaded
// by design.
type CommandList struct {
	packets []Packet
}

// Reloc is a position inside a command list, captured before and after a
// per-tile sublist is recorded so the main list can branch to it.
type Reloc struct {
	List  *CommandList
	Index int
}

// EnsureSpace grows the list's capacity so the next n packets append
// without reallocation. Mirrors the host driver's ensure-space contract on
// its byte-level lists.
func (cl *CommandList) EnsureSpace(n int) {
	if free := cap(cl.packets) - len(cl.packets); free < n {
		grown := make([]Packet, len(cl.packets), len(cl.packets)+n)
		copy(grown, cl.packets)
		cl.packets = grown
	}
}

// Emit appends one packet.
func (cl *CommandList) Emit(p Packet) {
	cl.packets = append(cl.packets, p)
}

// Pos captures the current end of the list as a relocation target.
func (cl *CommandList) Pos() Reloc {
	return Reloc{List: cl, Index: len(cl.packets)}
}

// Len returns the number of recorded packets.
func (cl *CommandList) Len() int { return len(cl.packets) }

// Packets returns the recorded packet stream. The caller must not modify
// it while the job is still being recorded.
func (cl *CommandList) Packets() []Packet { return cl.packets }
