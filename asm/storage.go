package asm

import (
	"fmt"

	"go.creack.net/smol/asm/parser"
	"go.creack.net/smol/op"
	"go.creack.net/smol/smolfile"
)

// layout assigns ascending offsets to the variables in declaration order.
// The i-th variable is the i-th storage item.
func layout(vars []*parser.Variable) ([]smolfile.StorageItem, map[string]uint16, error) {
	items := make([]smolfile.StorageItem, 0, len(vars))
	offsets := make(map[string]uint16, len(vars))
	offset := 0
	for _, v := range vars {
		construct := "variable " + v.Name
		if v.Init != nil && len(v.Init) != v.Size {
			return nil, nil, &Error{Line: v.Line, Construct: construct, Err: fmt.Errorf("%w: got %d bytes, expected %d", ErrInitializerLength, len(v.Init), v.Size)}
		}
		if v.Size <= 0 || v.Size >= op.InitializedFlag {
			return nil, nil, &Error{Line: v.Line, Construct: construct, Err: fmt.Errorf("%w: size %d", ErrInvalidOperand, v.Size)}
		}
		if offset+v.Size > op.VariableSize {
			return nil, nil, &Error{Line: v.Line, Construct: construct, Err: fmt.Errorf("%w: needs %d bytes", ErrStorageOverflow, offset+v.Size)}
		}
		if _, ok := offsets[v.Name]; ok {
			return nil, nil, &Error{Line: v.Line, Construct: construct, Err: fmt.Errorf("%w: declared twice", ErrInvalidOperand)}
		}
		offsets[v.Name] = uint16(offset)
		items = append(items, smolfile.StorageItem{
			Size:   uint16(v.Size),
			Offset: uint16(offset),
			Init:   v.Init,
		})
		offset += v.Size
	}
	return items, offsets, nil
}
