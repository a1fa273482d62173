package native

// Linear memory layout.
const (
	iovBase  = 16 // three iovecs for fd_write
	nWritten = 40 // fd_write result cell
	freeHead = 48 // head of the free list (header address, 0 = empty)
	dataBase = 64

	echoBase = 1024
	// EchoCapacity bounds the text kept by accept_string for echo_string.
	EchoCapacity = 2048

	heapBase   = 4096
	headerSize = 8

	// Header words: capacity at +0, state at +4, free-list link at +8.
	stateLive  = 0x4C495645 // "LIVE"
	stateFreed = 0x46524545 // "FREE"

	// maxAlloc keeps size arithmetic inside i32.
	maxAlloc = 1 << 30

	stdoutFD  = 1
	tableSize = 1
)

// Text emitted or returned by the library.
const (
	GreetingText       = "Hello, from native!"
	DemoText           = "Hello, from hello, from native"
	PrintPrefix        = "native print: "
	ProducedText       = "string from native"
	DemoAcceptText     = "native demo text"
	DemoProducedPrefix = "native produced: "
)

type segment struct {
	off uint32
	len uint32
}

// dataLayout packs static strings after dataBase.
type dataLayout struct {
	buf []byte
}

func (d *dataLayout) add(s string) segment {
	seg := segment{off: dataBase + uint32(len(d.buf)), len: uint32(len(s))}
	d.buf = append(d.buf, s...)
	return seg
}

type staticData struct {
	greeting       segment
	demoLine       segment
	printPrefix    segment
	newline        segment
	produced       segment // includes the NUL terminator
	demoAccept     segment
	producedPrefix segment
	bytes          []byte
}

func newStaticData() *staticData {
	var d dataLayout
	sd := &staticData{
		greeting:       d.add(GreetingText + "\n"),
		demoLine:       d.add(DemoText + "\n"),
		printPrefix:    d.add(PrintPrefix),
		newline:        d.add("\n"),
		produced:       d.add(ProducedText + "\x00"),
		demoAccept:     d.add(DemoAcceptText),
		producedPrefix: d.add(DemoProducedPrefix),
	}
	sd.bytes = d.buf
	if dataBase+len(sd.bytes) > echoBase {
		panic("native: static data overlaps echo area")
	}
	return sd
}
