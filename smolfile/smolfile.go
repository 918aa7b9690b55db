// Package smolfile holds the compiled program artifact: the storage
// descriptor, the entry address and the instruction stream, plus its
// on-disk layout.
package smolfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.creack.net/smol/op"
)

// Magic starts every .smol file.
const Magic = "SMOL"

// Version of the on-disk layout.
const Version = 1

// Ext is the default compiled file extension.
const Ext = ".smol"

var ErrInvalidFile = errors.New("invalid smol file")

// StorageItem describes one variable of the variable region.
type StorageItem struct {
	Size   uint16
	Offset uint16
	Init   []byte // Nil when zero initialized.
}

// Initialized reports whether the item carries an initializer.
func (s StorageItem) Initialized() bool { return s.Init != nil }

// Tag is the size field as stored: the size with op.InitializedFlag set
// when the item carries an initializer.
func (s StorageItem) Tag() uint16 {
	if s.Initialized() {
		return s.Size | op.InitializedFlag
	}
	return s.Size
}

// File is the compiled program.
type File struct {
	Storage      []StorageItem
	Entry        uint16
	Instructions []byte
}

// TotalSize is the encoded size of the storage descriptor.
func (f *File) TotalSize() int {
	n := 0
	for _, elem := range f.Storage {
		n += 4 + len(elem.Init)
	}
	return n
}

// VariableSize is the size of the variable region the program uses.
func (f *File) VariableSize() int {
	n := 0
	for _, elem := range f.Storage {
		n = max(n, int(elem.Offset)+int(elem.Size))
	}
	return n
}

// FillVariables zeroes region and copies the initializers at their offset.
func (f *File) FillVariables(region []byte) error {
	clear(region)
	for i, elem := range f.Storage {
		end := int(elem.Offset) + int(elem.Size)
		if end > len(region) {
			return fmt.Errorf("storage item %d [%d:%d] overflows the variable region (%d bytes)", i, elem.Offset, end, len(region))
		}
		if elem.Initialized() {
			copy(region[elem.Offset:end], elem.Init)
		}
	}
	return nil
}

// MarshalBinary encodes the file.
//
//	"SMOL" version:u8 count:u16 {tag:u16 offset:u16 init:[size]u8?}* entry:u16 len:u32 code
func (f *File) MarshalBinary() ([]byte, error) {
	if len(f.Storage) > 0xffff {
		return nil, fmt.Errorf("too many storage items: %d", len(f.Storage))
	}
	buf := bytes.NewBuffer(nil)
	tmp := make([]byte, 4)

	buf.WriteString(Magic)
	buf.WriteByte(Version)

	op.Endian.PutUint16(tmp, uint16(len(f.Storage)))
	buf.Write(tmp[:2])
	for i, elem := range f.Storage {
		if elem.Size&op.InitializedFlag != 0 {
			return nil, fmt.Errorf("storage item %d: size %d overflows", i, elem.Size)
		}
		if elem.Initialized() && len(elem.Init) != int(elem.Size) {
			return nil, fmt.Errorf("storage item %d: initializer is %d bytes, size is %d", i, len(elem.Init), elem.Size)
		}
		op.Endian.PutUint16(tmp, elem.Tag())
		op.Endian.PutUint16(tmp[2:], elem.Offset)
		buf.Write(tmp)
		buf.Write(elem.Init)
	}

	op.Endian.PutUint16(tmp, f.Entry)
	buf.Write(tmp[:2])
	op.Endian.PutUint32(tmp, uint32(len(f.Instructions)))
	buf.Write(tmp)
	buf.Write(f.Instructions)

	return buf.Bytes(), nil
}

type reader struct {
	data []byte
	idx  int
}

func (r *reader) next(n int) ([]byte, error) {
	if r.idx+n > len(r.data) {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, r.idx, len(r.data)-r.idx, io.ErrUnexpectedEOF)
	}
	out := r.data[r.idx : r.idx+n]
	r.idx += n
	return out, nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return op.Endian.Uint16(b), nil
}

// UnmarshalBinary decodes a file produced by MarshalBinary.
func (f *File) UnmarshalBinary(data []byte) error {
	r := &reader{data: data}

	hdr, err := r.next(len(Magic) + 1)
	if err != nil {
		return fmt.Errorf("header: %w: %w", ErrInvalidFile, err)
	}
	if string(hdr[:len(Magic)]) != Magic {
		return fmt.Errorf("bad magic %q: %w", hdr[:len(Magic)], ErrInvalidFile)
	}
	if v := hdr[len(Magic)]; v != Version {
		return fmt.Errorf("unsupported version %d: %w", v, ErrInvalidFile)
	}

	count, err := r.uint16()
	if err != nil {
		return fmt.Errorf("storage count: %w: %w", ErrInvalidFile, err)
	}
	storage := make([]StorageItem, 0, count)
	for i := range int(count) {
		tag, err := r.uint16()
		if err != nil {
			return fmt.Errorf("storage item %d: %w: %w", i, ErrInvalidFile, err)
		}
		offset, err := r.uint16()
		if err != nil {
			return fmt.Errorf("storage item %d: %w: %w", i, ErrInvalidFile, err)
		}
		item := StorageItem{Size: tag &^ op.InitializedFlag, Offset: offset}
		if tag&op.InitializedFlag != 0 {
			init, err := r.next(int(item.Size))
			if err != nil {
				return fmt.Errorf("storage item %d initializer: %w: %w", i, ErrInvalidFile, err)
			}
			item.Init = bytes.Clone(init)
		}
		storage = append(storage, item)
	}

	entry, err := r.uint16()
	if err != nil {
		return fmt.Errorf("entry: %w: %w", ErrInvalidFile, err)
	}
	lb, err := r.next(4)
	if err != nil {
		return fmt.Errorf("instructions length: %w: %w", ErrInvalidFile, err)
	}
	code, err := r.next(int(op.Endian.Uint32(lb)))
	if err != nil {
		return fmt.Errorf("instructions: %w: %w", ErrInvalidFile, err)
	}
	if r.idx != len(data) {
		return fmt.Errorf("%d trailing bytes: %w", len(data)-r.idx, ErrInvalidFile)
	}
	if int(entry) > len(code) {
		return fmt.Errorf("entry %d outside of the %d bytes program: %w", entry, len(code), ErrInvalidFile)
	}

	f.Storage = storage
	f.Entry = entry
	f.Instructions = bytes.Clone(code)
	return nil
}

// ReadFile loads a compiled program from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	f := &File{}
	if err := f.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	return f, nil
}

// WriteFile stores a compiled program on disk.
func WriteFile(path string, f *File) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
