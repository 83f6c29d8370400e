package gemm

import "github.com/sarchlab/akita/v4/sim"

// CommandMsg submits one block descriptor to an accelerator.
type CommandMsg struct {
	sim.MsgMeta

	Desc Descriptor
}

// Meta returns the meta data of the msg.
func (m *CommandMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone creates a copy of the msg with a new ID.
func (m *CommandMsg) Clone() sim.Msg {
	c := *m
	c.ID = sim.GetIDGenerator().Generate()

	return &c
}

// CommandMsgBuilder is a factory for CommandMsg.
type CommandMsgBuilder struct {
	src, dst sim.RemotePort
	desc     Descriptor
}

// WithSrc sets the source port of the msg.
func (b CommandMsgBuilder) WithSrc(src sim.RemotePort) CommandMsgBuilder {
	b.src = src
	return b
}

// WithDst sets the destination port of the msg.
func (b CommandMsgBuilder) WithDst(dst sim.RemotePort) CommandMsgBuilder {
	b.dst = dst
	return b
}

// WithDescriptor sets the block descriptor carried by the msg.
func (b CommandMsgBuilder) WithDescriptor(desc Descriptor) CommandMsgBuilder {
	b.desc = desc
	return b
}

// Build creates a CommandMsg.
func (b CommandMsgBuilder) Build() *CommandMsg {
	return &CommandMsg{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: b.src,
			Dst: b.dst,
		},
		Desc: b.desc,
	}
}

// BlockDoneMsg reports the completion of one block.
type BlockDoneMsg struct {
	sim.MsgMeta

	Seq  uint64
	Dims Dims
}

// Meta returns the meta data of the msg.
func (m *BlockDoneMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone creates a copy of the msg with a new ID.
func (m *BlockDoneMsg) Clone() sim.Msg {
	c := *m
	c.ID = sim.GetIDGenerator().Generate()

	return &c
}

// BlockDoneMsgBuilder is a factory for BlockDoneMsg.
type BlockDoneMsgBuilder struct {
	src, dst sim.RemotePort
	seq      uint64
	dims     Dims
}

// WithSrc sets the source port of the msg.
func (b BlockDoneMsgBuilder) WithSrc(src sim.RemotePort) BlockDoneMsgBuilder {
	b.src = src
	return b
}

// WithDst sets the destination port of the msg.
func (b BlockDoneMsgBuilder) WithDst(dst sim.RemotePort) BlockDoneMsgBuilder {
	b.dst = dst
	return b
}

// WithSeq sets the sequence number of the completed block.
func (b BlockDoneMsgBuilder) WithSeq(seq uint64) BlockDoneMsgBuilder {
	b.seq = seq
	return b
}

// WithDims sets the dims of the completed block.
func (b BlockDoneMsgBuilder) WithDims(dims Dims) BlockDoneMsgBuilder {
	b.dims = dims
	return b
}

// Build creates a BlockDoneMsg.
func (b BlockDoneMsgBuilder) Build() *BlockDoneMsg {
	return &BlockDoneMsg{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: b.src,
			Dst: b.dst,
		},
		Seq:  b.seq,
		Dims: b.dims,
	}
}
