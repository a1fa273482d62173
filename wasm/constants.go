package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// Section IDs define the binary identifiers for each module section.
// Sections must appear in increasing order by ID.
const (
	SectionType     byte = 1  // Type section (function signatures)
	SectionImport   byte = 2  // Import section
	SectionFunction byte = 3  // Function section (type indices)
	SectionTable    byte = 4  // Table section
	SectionMemory   byte = 5  // Memory section
	SectionGlobal   byte = 6  // Global section
	SectionExport   byte = 7  // Export section
	SectionElement  byte = 9  // Element section
	SectionCode     byte = 10 // Code section (function bodies)
	SectionData     byte = 11 // Data section
)

// Import/Export descriptor kinds identify the type of imported or exported item.
const (
	KindFunc   byte = 0 // Function import/export
	KindTable  byte = 1 // Table import/export
	KindMemory byte = 2 // Memory import/export
	KindGlobal byte = 3 // Global import/export
)

// Value type encodings as defined in the WebAssembly binary format.
const (
	ValI32     ValType = 0x7F // 32-bit integer
	ValI64     ValType = 0x7E // 64-bit integer
	ValF32     ValType = 0x7D // 32-bit float
	ValF64     ValType = 0x7C // 64-bit float
	ValFuncRef ValType = 0x70 // Function reference
)

// FuncTypeByte prefixes every function type in the type section.
const FuncTypeByte byte = 0x60

// Limits flags
const (
	LimitsNoMax  byte = 0x00
	LimitsHasMax byte = 0x01
)

// Block types
const (
	BlockVoid byte = 0x40
	BlockI32  byte = 0x7F
)

// PageSize is the size of one linear memory page.
const PageSize = 65536

// MaxPages is the largest page count a 32-bit memory can declare.
const MaxPages = 65536

// Control flow opcodes
const (
	OpUnreachable  byte = 0x00
	OpBlock        byte = 0x02
	OpLoop         byte = 0x03
	OpIf           byte = 0x04
	OpEnd          byte = 0x0B
	OpBr           byte = 0x0C
	OpBrIf         byte = 0x0D
	OpReturn       byte = 0x0F
	OpCall         byte = 0x10
	OpCallIndirect byte = 0x11
)

// Parametric opcodes
const (
	OpDrop   byte = 0x1A
	OpSelect byte = 0x1B
)

// Variable opcodes
const (
	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24
)

// Memory opcodes
const (
	OpI32Load    byte = 0x28
	OpI32Load8U  byte = 0x2D
	OpI32Store   byte = 0x36
	OpI32Store8  byte = 0x3A
	OpMemorySize byte = 0x3F
	OpMemoryGrow byte = 0x40
)

// Numeric opcodes (i32 only)
const (
	OpI32Const byte = 0x41
	OpI32Eqz   byte = 0x45
	OpI32Eq    byte = 0x46
	OpI32Ne    byte = 0x47
	OpI32LtS   byte = 0x48
	OpI32LtU   byte = 0x49
	OpI32GtU   byte = 0x4B
	OpI32GeU   byte = 0x4F
	OpI32Add   byte = 0x6A
	OpI32Sub   byte = 0x6B
	OpI32And   byte = 0x71
	OpI32Shl   byte = 0x74
	OpI32ShrU  byte = 0x76
)

// OpPrefixMisc introduces the 0xFC instruction space (bulk memory).
const OpPrefixMisc byte = 0xFC

// Bulk memory sub-opcodes
const (
	MiscMemoryCopy uint32 = 10
)
