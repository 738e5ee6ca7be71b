package resolver

import (
	"encoding/binary"
	"errors"
	"fmt"

	"executor-resolver-sol/internal/pkg/types"
)

// 编码布局（小端、无填充）：
//   - Pubkey: 32 字节原始数据
//   - bool:   1 字节，0 或 1
//   - 变长序列: 4 字节元素个数 + 各元素编码依次拼接
//   - Resolver: 1 字节 tag（0=Resolved, 1=Missing, 2=Pending）+ 对应载荷

var (
	ErrUnexpectedEOF  = errors.New("unexpected end of buffer")
	ErrMalformedBool  = errors.New("malformed bool")
	ErrUnknownKind    = errors.New("unknown resolver tag")
	ErrLengthOverflow = errors.New("sequence length exceeds remaining buffer")
	ErrTrailingBytes  = errors.New("trailing bytes after value")
)

// 各元素最小编码长度，用于在分配前校验长度前缀
const (
	minAccountMetaSize = types.PubkeySize + 2
	minInstructionSize = types.PubkeySize + 4 + 4
	minGroupSize       = 4 + 4
)

type Encoder struct {
	buf []byte
}

func NewEncoder(capHint int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capHint)}
}

func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) WriteU8(v uint8) { e.buf = append(e.buf, v) }

func (e *Encoder) WriteU32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
		return
	}
	e.buf = append(e.buf, 0)
}

func (e *Encoder) WritePubkey(pk types.Pubkey) { e.buf = append(e.buf, pk[:]...) }

func (e *Encoder) WriteBytes(b []byte) {
	e.WriteU32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *Encoder) WritePubkeys(keys []types.Pubkey) {
	e.WriteU32(uint32(len(keys)))
	for _, k := range keys {
		e.WritePubkey(k)
	}
}

func (e *Encoder) WriteAccountMeta(a AccountMeta) {
	e.WritePubkey(a.Pubkey)
	e.WriteBool(a.IsSigner)
	e.WriteBool(a.IsWritable)
}

func (e *Encoder) WriteInstruction(ix Instruction) {
	e.WritePubkey(ix.ProgramID)
	e.WriteU32(uint32(len(ix.Accounts)))
	for _, a := range ix.Accounts {
		e.WriteAccountMeta(a)
	}
	e.WriteBytes(ix.Data)
}

func (e *Encoder) WriteInstructionGroup(g InstructionGroup) {
	e.WriteU32(uint32(len(g.Instructions)))
	for _, ix := range g.Instructions {
		e.WriteInstruction(ix)
	}
	e.WritePubkeys(g.AddressLookupTables)
}

func (e *Encoder) WriteInstructionGroups(groups InstructionGroups) {
	e.WriteU32(uint32(len(groups)))
	for _, g := range groups {
		e.WriteInstructionGroup(g)
	}
}

func (e *Encoder) WriteMissingAccounts(m MissingAccounts) {
	e.WritePubkeys(m.Accounts)
	e.WritePubkeys(m.AddressLookupTables)
}

type Decoder struct {
	data []byte
	off  int
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

func (d *Decoder) Remaining() int { return len(d.data) - d.off }

func (d *Decoder) Offset() int { return d.off }

// Finish 严格模式下要求缓冲区恰好消费完
func (d *Decoder) Finish() error {
	if d.Remaining() != 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, d.Remaining())
	}
	return nil
}

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d at offset %d, have %d", ErrUnexpectedEOF, n, d.off, d.Remaining())
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *Decoder) ReadU8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) ReadU32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) ReadBool() (bool, error) {
	v, err := d.ReadU8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %d at offset %d", ErrMalformedBool, v, d.off-1)
	}
}

func (d *Decoder) ReadPubkey() (types.Pubkey, error) {
	var pk types.Pubkey
	b, err := d.take(types.PubkeySize)
	if err != nil {
		return pk, err
	}
	copy(pk[:], b)
	return pk, nil
}

// readCount 读取序列长度，并确认剩余字节至少能容纳 count 个最小元素
func (d *Decoder) readCount(minElemSize int) (int, error) {
	n, err := d.ReadU32()
	if err != nil {
		return 0, err
	}
	if uint64(n)*uint64(minElemSize) > uint64(d.Remaining()) {
		return 0, fmt.Errorf("%w: count=%d elem>=%d remaining=%d", ErrLengthOverflow, n, minElemSize, d.Remaining())
	}
	return int(n), nil
}

func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.readCount(1)
	if err != nil {
		return nil, err
	}
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	return append(make([]byte, 0, n), b...), nil
}

func (d *Decoder) ReadPubkeys() ([]types.Pubkey, error) {
	n, err := d.readCount(types.PubkeySize)
	if err != nil {
		return nil, err
	}
	keys := make([]types.Pubkey, 0, n)
	for i := 0; i < n; i++ {
		pk, err := d.ReadPubkey()
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk)
	}
	return keys, nil
}

func (d *Decoder) ReadAccountMeta() (AccountMeta, error) {
	var a AccountMeta
	var err error
	if a.Pubkey, err = d.ReadPubkey(); err != nil {
		return a, err
	}
	if a.IsSigner, err = d.ReadBool(); err != nil {
		return a, err
	}
	if a.IsWritable, err = d.ReadBool(); err != nil {
		return a, err
	}
	return a, nil
}

func (d *Decoder) ReadInstruction() (Instruction, error) {
	var ix Instruction
	var err error
	if ix.ProgramID, err = d.ReadPubkey(); err != nil {
		return ix, err
	}
	n, err := d.readCount(minAccountMetaSize)
	if err != nil {
		return ix, err
	}
	ix.Accounts = make([]AccountMeta, 0, n)
	for i := 0; i < n; i++ {
		a, err := d.ReadAccountMeta()
		if err != nil {
			return ix, err
		}
		ix.Accounts = append(ix.Accounts, a)
	}
	if ix.Data, err = d.ReadBytes(); err != nil {
		return ix, err
	}
	return ix, nil
}

func (d *Decoder) ReadInstructionGroup() (InstructionGroup, error) {
	var g InstructionGroup
	n, err := d.readCount(minInstructionSize)
	if err != nil {
		return g, err
	}
	g.Instructions = make([]Instruction, 0, n)
	for i := 0; i < n; i++ {
		ix, err := d.ReadInstruction()
		if err != nil {
			return g, err
		}
		g.Instructions = append(g.Instructions, ix)
	}
	if g.AddressLookupTables, err = d.ReadPubkeys(); err != nil {
		return g, err
	}
	return g, nil
}

func (d *Decoder) ReadInstructionGroups() (InstructionGroups, error) {
	n, err := d.readCount(minGroupSize)
	if err != nil {
		return nil, err
	}
	groups := make(InstructionGroups, 0, n)
	for i := 0; i < n; i++ {
		g, err := d.ReadInstructionGroup()
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (d *Decoder) ReadMissingAccounts() (MissingAccounts, error) {
	var m MissingAccounts
	var err error
	if m.Accounts, err = d.ReadPubkeys(); err != nil {
		return m, err
	}
	if m.AddressLookupTables, err = d.ReadPubkeys(); err != nil {
		return m, err
	}
	return m, nil
}

// WriteResolver 写入 tag 与对应载荷，Resolved 的载荷由 writeValue 负责
func WriteResolver[T any](e *Encoder, r Resolver[T], writeValue func(*Encoder, T)) {
	e.WriteU8(uint8(r.Kind()))
	switch r.Kind() {
	case KindResolved:
		writeValue(e, r.value)
	case KindMissing:
		e.WriteMissingAccounts(r.missing)
	}
}

func ReadResolver[T any](d *Decoder, readValue func(*Decoder) (T, error)) (Resolver[T], error) {
	tag, err := d.ReadU8()
	if err != nil {
		return Resolver[T]{}, err
	}
	switch Kind(tag) {
	case KindResolved:
		v, err := readValue(d)
		if err != nil {
			return Resolver[T]{}, err
		}
		return Resolved(v), nil
	case KindMissing:
		m, err := d.ReadMissingAccounts()
		if err != nil {
			return Resolver[T]{}, err
		}
		return Missing[T](m), nil
	case KindPending:
		return Pending[T](), nil
	default:
		return Resolver[T]{}, fmt.Errorf("%w: %d", ErrUnknownKind, tag)
	}
}

// EncodeGroups 编码 Resolver<InstructionGroups>，即返回值与结果账户共用的格式
func EncodeGroups(r Resolver[InstructionGroups]) []byte {
	e := NewEncoder(EncodedGroupsSize(r))
	WriteResolver(e, r, (*Encoder).WriteInstructionGroups)
	return e.Bytes()
}

// DecodeGroups 严格解码：不允许多余字节
func DecodeGroups(data []byte) (Resolver[InstructionGroups], error) {
	d := NewDecoder(data)
	r, err := ReadResolver(d, (*Decoder).ReadInstructionGroups)
	if err != nil {
		return r, err
	}
	return r, d.Finish()
}

// DecodeGroupsPrefix 只解码前缀，忽略尾部字节（结果账户扩容后尾部为 0 填充）
func DecodeGroupsPrefix(data []byte) (Resolver[InstructionGroups], int, error) {
	d := NewDecoder(data)
	r, err := ReadResolver(d, (*Decoder).ReadInstructionGroups)
	return r, d.Offset(), err
}

// EncodedGroupsSize 预先计算编码长度，用于缓冲区预分配和扩容计算
func EncodedGroupsSize(r Resolver[InstructionGroups]) int {
	switch r.Kind() {
	case KindResolved:
		n := 1 + 4
		for _, g := range r.value {
			n += 4 + 4 + len(g.AddressLookupTables)*types.PubkeySize
			for _, ix := range g.Instructions {
				n += types.PubkeySize + 4 + len(ix.Accounts)*minAccountMetaSize + 4 + len(ix.Data)
			}
		}
		return n
	case KindMissing:
		return 1 + 4 + len(r.missing.Accounts)*types.PubkeySize + 4 + len(r.missing.AddressLookupTables)*types.PubkeySize
	default:
		return 1
	}
}
