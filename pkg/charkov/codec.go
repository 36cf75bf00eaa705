package charkov

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"sort"
	"unicode/utf8"
)

// Binary layout, all integers little endian or unsigned varints:
//
//	magic    [4]byte "FCTN"
//	version  byte
//	contexts uvarint, then per context:
//	    first, second symbol
//	    entries uvarint, then per entry: symbol, weight uvarint
//	words    uvarint, then per word: length uvarint, UTF-8 bytes
//	crc32    uint32 (IEEE) over everything before it
//
// A symbol is a kind byte followed, for characters only, by the code point
// as an uvarint. Contexts, entries and words are written in sorted order so
// equal chains always encode to identical bytes.
const (
	codecVersion = 1
	headerSize   = 5
	trailerSize  = 4
)

var codecMagic = [4]byte{'F', 'C', 'T', 'N'}

var (
	// ErrBadMagic is returned when the input does not start with the chain magic.
	ErrBadMagic = errors.New("charkov: not an encoded chain")
	// ErrUnsupportedVersion is returned for an unknown format version.
	ErrUnsupportedVersion = errors.New("charkov: unsupported chain format version")
	// ErrChecksum is returned when the trailing checksum does not match.
	ErrChecksum = errors.New("charkov: chain checksum mismatch")
	// ErrTruncated is returned when the input ends in the middle of a field.
	ErrTruncated = errors.New("charkov: encoded chain is truncated")
	// ErrMalformed is returned when the input is well framed but describes
	// an impossible chain.
	ErrMalformed = errors.New("charkov: malformed chain data")
)

// Encode serializes ch into its binary form.
func Encode(ch *Chain) []byte {
	var buf bytes.Buffer
	buf.Write(codecMagic[:])
	buf.WriteByte(codecVersion)

	var tmp [binary.MaxVarintLen64]byte
	putUvarint := func(v uint64) {
		n := binary.PutUvarint(tmp[:], v)
		buf.Write(tmp[:n])
	}
	putSymbol := func(s Symbol) {
		buf.WriteByte(byte(s.kind))
		if s.kind == KindChar {
			putUvarint(uint64(s.char))
		}
	}

	contexts := ch.sortedContexts()
	putUvarint(uint64(len(contexts)))
	for _, ctx := range contexts {
		putSymbol(ctx.first)
		putSymbol(ctx.second)
		s := ch.samplers[ctx]
		putUvarint(uint64(len(s.symbols)))
		for _, e := range s.sortedEntries() {
			putSymbol(e.symbol)
			putUvarint(uint64(e.weight))
		}
	}

	words := ch.sortedWords()
	putUvarint(uint64(len(words)))
	for _, w := range words {
		putUvarint(uint64(len(w)))
		buf.WriteString(w)
	}

	var sum [trailerSize]byte
	binary.LittleEndian.PutUint32(sum[:], crc32.ChecksumIEEE(buf.Bytes()))
	buf.Write(sum[:])
	return buf.Bytes()
}

// Decode parses data produced by Encode. It never returns a partial chain:
// any framing, checksum or consistency problem yields a nil chain and an
// error matching one of the codec sentinels or ErrInvalidChain.
func Decode(data []byte) (*Chain, error) {
	if len(data) < headerSize+trailerSize {
		if len(data) >= len(codecMagic) && !bytes.Equal(data[:len(codecMagic)], codecMagic[:]) {
			return nil, ErrBadMagic
		}
		return nil, ErrTruncated
	}
	if !bytes.Equal(data[:len(codecMagic)], codecMagic[:]) {
		return nil, ErrBadMagic
	}
	body := data[:len(data)-trailerSize]
	want := binary.LittleEndian.Uint32(data[len(data)-trailerSize:])
	if crc32.ChecksumIEEE(body) != want {
		return nil, ErrChecksum
	}
	if v := body[len(codecMagic)]; v != codecVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	d := &decoder{data: body, pos: headerSize}

	nContexts, err := d.count()
	if err != nil {
		return nil, err
	}
	ch := &Chain{
		samplers: make(map[Context]*Sampler, nContexts),
		words:    make(map[string]struct{}),
	}
	for i := 0; i < nContexts; i++ {
		ctx, err := d.context()
		if err != nil {
			return nil, err
		}
		if _, dup := ch.samplers[ctx]; dup {
			return nil, fmt.Errorf("%w: duplicate context %q", ErrMalformed, ctx.String())
		}
		s, err := d.sampler()
		if err != nil {
			return nil, fmt.Errorf("context %q: %w", ctx.String(), err)
		}
		ch.samplers[ctx] = s
	}

	nWords, err := d.count()
	if err != nil {
		return nil, err
	}
	for i := 0; i < nWords; i++ {
		w, err := d.word()
		if err != nil {
			return nil, err
		}
		if _, dup := ch.words[w]; dup {
			return nil, fmt.Errorf("%w: duplicate word %q", ErrMalformed, w)
		}
		ch.words[w] = struct{}{}
	}

	if d.pos != len(d.data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(d.data)-d.pos)
	}
	if err := ch.Validate(); err != nil {
		return nil, err
	}
	return ch, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (ch *Chain) MarshalBinary() ([]byte, error) {
	return Encode(ch), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. On error ch is left
// unchanged.
func (ch *Chain) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*ch = *decoded
	return nil
}

// WriteTo writes the encoded chain to w.
func (ch *Chain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(Encode(ch))
	return int64(n), err
}

// ReadChain reads r to the end and decodes it.
func ReadChain(r io.Reader) (*Chain, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

type entry struct {
	symbol Symbol
	weight uint32
}

func (s *Sampler) sortedEntries() []entry {
	entries := make([]entry, len(s.symbols))
	for i, sym := range s.symbols {
		entries[i] = entry{symbol: sym, weight: s.weights[i]}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].symbol.less(entries[j].symbol) })
	return entries
}

// decoder reads fields from the checksummed body of an encoded chain.
type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) uvarint() (uint64, error) {
	v, n := binary.Uvarint(d.data[d.pos:])
	if n == 0 {
		return 0, ErrTruncated
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: varint overflow at offset %d", ErrMalformed, d.pos)
	}
	d.pos += n
	return v, nil
}

// count reads a collection length. Every element takes at least one byte,
// so a count larger than the remaining input cannot be honest.
func (d *decoder) count() (int, error) {
	v, err := d.uvarint()
	if err != nil {
		return 0, err
	}
	if v > uint64(len(d.data)-d.pos) {
		return 0, ErrTruncated
	}
	return int(v), nil
}

func (d *decoder) symbol() (Symbol, error) {
	if d.pos >= len(d.data) {
		return Symbol{}, ErrTruncated
	}
	kind := SymbolKind(d.data[d.pos])
	d.pos++
	switch kind {
	case KindStart:
		return Start, nil
	case KindEnd:
		return End, nil
	case KindChar:
		v, err := d.uvarint()
		if err != nil {
			return Symbol{}, err
		}
		if v > math.MaxInt32 || !utf8.ValidRune(rune(v)) {
			return Symbol{}, fmt.Errorf("%w: invalid code point %d", ErrMalformed, v)
		}
		return Char(rune(v)), nil
	default:
		return Symbol{}, fmt.Errorf("%w: unknown symbol kind %d", ErrMalformed, kind)
	}
}

func (d *decoder) context() (Context, error) {
	first, err := d.symbol()
	if err != nil {
		return Context{}, err
	}
	second, err := d.symbol()
	if err != nil {
		return Context{}, err
	}
	if first.IsEnd() || second.IsEnd() {
		return Context{}, fmt.Errorf("%w: end boundary inside a context", ErrMalformed)
	}
	if second.kind == KindStart && first.kind != KindStart {
		return Context{}, fmt.Errorf("%w: start boundary after a character", ErrMalformed)
	}
	return Context{first: first, second: second}, nil
}

func (d *decoder) sampler() (*Sampler, error) {
	n, err := d.count()
	if err != nil {
		return nil, err
	}
	symbols := make([]Symbol, 0, n)
	weights := make([]uint32, 0, n)
	seen := make(map[Symbol]struct{}, n)
	for i := 0; i < n; i++ {
		sym, err := d.symbol()
		if err != nil {
			return nil, err
		}
		if sym.kind == KindStart {
			return nil, fmt.Errorf("%w: start boundary as a next symbol", ErrMalformed)
		}
		if _, dup := seen[sym]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrMalformed, sym.String())
		}
		seen[sym] = struct{}{}
		w, err := d.uvarint()
		if err != nil {
			return nil, err
		}
		if w > math.MaxUint32 {
			return nil, fmt.Errorf("%w: weight %d out of range", ErrMalformed, w)
		}
		symbols = append(symbols, sym)
		weights = append(weights, uint32(w))
	}
	s, err := NewSampler(symbols, weights)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return s, nil
}

func (d *decoder) word() (string, error) {
	n, err := d.count()
	if err != nil {
		return "", err
	}
	w := string(d.data[d.pos : d.pos+n])
	d.pos += n
	if w == "" || !utf8.ValidString(w) {
		return "", fmt.Errorf("%w: invalid training word", ErrMalformed)
	}
	return w, nil
}
