package tlb

// Packet is one render-command-list instruction. The emitter produces
// typed packet records; encoding them into the hardware's byte format is
// the host driver's concern and happens at submission time.
type Packet interface {
	isPacket()
}

// Address references a byte offset inside a buffer object.
type Address struct {
	BO     *BufferObject
	Offset uint32
}

// TileBufferChannel selects which on-chip buffer a general load or store
// instruction moves.
type TileBufferChannel uint8

// Tile buffer channels.
const (
	ChannelNone TileBufferChannel = iota
	ChannelRenderTarget0
	ChannelDepth
	ChannelStencil
	ChannelDepthStencil
)

// zsChannelForAspect maps a depth and/or stencil aspect to its tile buffer.
func zsChannelForAspect(aspect Aspect) TileBufferChannel {
	switch aspect & aspectDepthStencil {
	case AspectDepth:
		return ChannelDepth
	case AspectStencil:
		return ChannelStencil
	case aspectDepthStencil:
		return ChannelDepthStencil
	default:
		panic("tlb: aspect has no depth/stencil bits")
	}
}

// DecimateMode selects multisample resolution on loads and stores.
type DecimateMode uint8

// Decimate modes.
const (
	DecimateSample0 DecimateMode = iota
	Decimate4x
	DecimateAllSamples
)

// RenderModeCommonConfig opens the RCL: frame dimensions and the maximum
// internal bit depth across all render targets.
type RenderModeCommonConfig struct {
	EarlyZDisable bool
	Width, Height uint32
	RenderTargets uint8
	Multisample4x bool
	MaxBPP        InternalBPP
}

// ClearColorsPart1 carries the low 64 bits of the clear color. Always
// written when a color clear is requested.
type ClearColorsPart1 struct {
	Low32        uint32
	Next24       uint32
	RenderTarget uint8
}

// ClearColorsPart2 carries the middle clear color bits, needed at 64bpp
// and above.
type ClearColorsPart2 struct {
	MidLow32     uint32
	MidHigh24    uint32
	RenderTarget uint8
}

// ClearColorsPart3 carries the top clear color bits and the UIF padded
// height override used to work around a clear erratum on padded UIF
// surfaces.
type ClearColorsPart3 struct {
	UIFPaddedHeight uint32
	High16          uint32
	RenderTarget    uint8
}

// RenderModeColorConfig describes render target 0.
type RenderModeColorConfig struct {
	BPP          InternalBPP
	InternalType InternalType
}

// ZSClearValues sets the depth and stencil clear state.
type ZSClearValues struct {
	Z       float32
	Stencil uint8
}

// TileListInitialBlockSize configures tile-list allocation chaining.
type TileListInitialBlockSize struct {
	AutoChain bool
	BlockSize uint32
}

// MulticoreTileListBase binds the tile allocation memory for one layer.
type MulticoreTileListBase struct {
	Address Address
}

// MulticoreSupertileConfig describes the supertile layout of the frame.
type MulticoreSupertileConfig struct {
	BinTileLists     uint8
	TotalTilesX      uint32
	TotalTilesY      uint32
	SupertileWidth   uint32
	SupertileHeight  uint32
	TotalSupertilesX uint32
	TotalSupertilesY uint32
}

// TileCoordinates sets an explicit tile coordinate (frame setup only).
type TileCoordinates struct{}

// TileCoordinatesImplicit starts a generic tile list entry; the hardware
// substitutes the coordinates of the tile being processed.
type TileCoordinatesImplicit struct{}

// EndOfLoads separates the load instructions from the rest of a tile list.
type EndOfLoads struct{}

// EndOfTileMarker closes one tile's command sequence.
type EndOfTileMarker struct{}

// FlushVCDCache flushes the vertex cache after frame setup.
type FlushVCDCache struct{}

// ClearTileBuffers clears the on-chip buffers for the current tile.
type ClearTileBuffers struct {
	ClearZStencil         bool
	ClearAllRenderTargets bool
}

// LoadTileBuffer is a general load: memory to tile buffer.
type LoadTileBuffer struct {
	Buffer         TileBufferChannel
	Address        Address
	Format         OutputFormat
	Memory         Tiling
	HeightOrStride uint32
	RBSwap         bool
	ChannelReverse bool
	Decimate       DecimateMode
}

// StoreTileBuffer is a general store: tile buffer to memory.
type StoreTileBuffer struct {
	Buffer         TileBufferChannel
	Address        Address
	Format         OutputFormat
	Memory         Tiling
	HeightOrStride uint32
	RBSwap         bool
	ChannelReverse bool
	Decimate       DecimateMode
	Clear          bool
}

// BranchToImplicitTileList jumps into the bound per-tile list.
type BranchToImplicitTileList struct{}

// ReturnFromSubList ends a per-tile sublist.
type ReturnFromSubList struct{}

// GenericTileListBranch references a per-tile sublist recorded in the
// indirect command list. Exactly one branch is emitted per recorded
// sublist.
type GenericTileListBranch struct {
	Start, End Reloc
}

// SupertileCoordinates triggers execution of the bound tile list over one
// supertile.
type SupertileCoordinates struct {
	Column, Row uint32
}

// EndOfRendering closes the RCL.
type EndOfRendering struct{}

func (RenderModeCommonConfig) isPacket()   {}
func (ClearColorsPart1) isPacket()         {}
func (ClearColorsPart2) isPacket()         {}
func (ClearColorsPart3) isPacket()         {}
func (RenderModeColorConfig) isPacket()    {}
func (ZSClearValues) isPacket()            {}
func (TileListInitialBlockSize) isPacket() {}
func (MulticoreTileListBase) isPacket()    {}
func (MulticoreSupertileConfig) isPacket() {}
func (TileCoordinates) isPacket()          {}
func (TileCoordinatesImplicit) isPacket()  {}
func (EndOfLoads) isPacket()               {}
func (EndOfTileMarker) isPacket()          {}
func (FlushVCDCache) isPacket()            {}
func (ClearTileBuffers) isPacket()         {}
func (LoadTileBuffer) isPacket()           {}
func (StoreTileBuffer) isPacket()          {}
func (BranchToImplicitTileList) isPacket() {}
func (ReturnFromSubList) isPacket()        {}
func (GenericTileListBranch) isPacket()    {}
func (SupertileCoordinates) isPacket()     {}
func (EndOfRendering) isPacket()           {}
