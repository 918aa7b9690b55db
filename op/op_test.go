package op

import "testing"

func TestFieldsRoundTrip(t *testing.T) {
	for i := range 256 {
		code := byte(i)
		if got := DecodeFields(code).Encode(); got != code {
			t.Errorf("0b%08b: decode/encode gave 0b%08b", code, got)
		}
	}
}

func TestKnownEncodings(t *testing.T) {
	tests := []struct {
		name string
		code byte
	}{
		{"add", 0b00_000_0_0_0},
		{"addi", 0b00_000_1_0_0},
		{"addil", 0b00_000_1_1_0},
		{"eqr", 0b00_110_0_0_0},
		{"dec", 0b00_111_1_0_0},
		{"st", 0b01_00_0_0_0_0},
		{"stl", 0b01_00_0_0_1_0},
		{"sti", 0b01_00_0_1_0_0},
		{"stil", 0b01_00_0_1_1_0},
		{"stm", 0b01_00_1_1_0_0},
		{"str", 0b01_00_1_0_0_0},
		{"ldm", 0b01_01_1_0_0_0},
		{"ldml", 0b01_01_1_0_1_0},
		{"swp", 0b01_11_0_0_0_0},
		{"pur", 0b10_00_0_0_00},
		{"puil", 0b10_00_1_1_00},
		{"porl", 0b10_01_0_1_00},
		{"sv", 0b10_10_1_1_00},
		{"uv", 0b10_11_0_0_00},
		{"jmp", 0b11_000_000},
		{"be", 0b11_001_000},
		{"blt", 0b11_100_000},
		{"call", 0b11_101_000},
		{"ret", 0b11_110_000},
		{"syscall", 0b11_101_111},
	}
	for _, tt := range tests {
		o, ok := LookupName(tt.name)
		if !ok {
			t.Fatalf("%q: missing from the opcode table", tt.name)
		}
		if o.Code != tt.code {
			t.Errorf("%q: got 0b%08b, want 0b%08b", tt.name, o.Code, tt.code)
		}
		back, ok := Lookup(tt.code)
		if !ok || back.Name != tt.name {
			t.Errorf("0b%08b: lookup gave %q, want %q", tt.code, back.Name, tt.name)
		}
	}
}

func TestSizes(t *testing.T) {
	tests := map[string]int{
		"add":     2,
		"addi":    3,
		"addil":   4,
		"not":     2,
		"incl":    2,
		"st":      2,
		"sti":     3,
		"stil":    4,
		"stm":     4,
		"stml":    5,
		"str":     4,
		"ldml":    4,
		"swm":     4,
		"pur":     2,
		"pui":     2,
		"puil":    3,
		"sv":      3,
		"svi":     2,
		"uv":      1,
		"be":      3,
		"call":    3,
		"ret":     1,
		"syscall": 1,
	}
	for name, want := range tests {
		o, _ := LookupName(name)
		if got := o.Size(); got != want {
			t.Errorf("%q: got size %d, want %d", name, got, want)
		}
	}
}

func TestTableIsDefined(t *testing.T) {
	for _, o := range OpCodeTable {
		f := o.Fields()
		if f.Reserved != 0 {
			t.Errorf("%s: reserved bits set", o)
		}
		if f.Family == FamilyLoadStore && f.Sub == 0b10 {
			t.Errorf("%s: undefined load/store direction", o)
		}
		for _, elem := range o.ParamTypes {
			if elem.Size() < 0 {
				t.Errorf("%s: operand type %s is not a single type", o, elem)
			}
		}
	}
}

func TestReservedEncodings(t *testing.T) {
	for _, code := range []byte{
		0b00_000_0_0_1,  // ALU reserved bit.
		0b01_10_0_0_0_0, // Undefined load/store direction.
		0b10_00_0_0_01,  // Stack reserved bits.
		0b11_000_001,    // Branch reserved bits.
		0b11_110_111,    // Only call has a trap form.
	} {
		if o, ok := Lookup(code); ok {
			t.Errorf("0b%08b: expected reserved, got %s", code, o)
		}
	}
}

func TestRegisters(t *testing.T) {
	r, ok := ParseRegister("l1")
	if !ok || r != L1 || !r.Wide() || r.ParamType() != TReg16 {
		t.Fatalf("l1: got %v %v", r, ok)
	}
	r, ok = ParseRegister("r7")
	if !ok || r != R7 || r.Wide() {
		t.Fatalf("r7: got %v %v", r, ok)
	}
	if _, ok := ParseRegister("r8"); ok {
		t.Fatal("r8 should not exist")
	}
	if got := PackPair(R7, R6); got != 0b0110_0111 {
		t.Fatalf("pair: got 0b%08b", got)
	}
	a, b := UnpackPair(0b0110_0111)
	if a != R7 || b != R6 {
		t.Fatalf("unpack: got %s %s", a, b)
	}
	if VP != 8 || L0 != 9 || L1 != 10 || IC != 11 || FG != 12 || CR != 13 || SP != 14 || ZR != 15 {
		t.Fatal("unexpected register selectors")
	}
}

func TestParamTypeCodec(t *testing.T) {
	buf := make([]byte, 2)
	if n := TAddr.Encoding(buf, 0x0102); n != 2 || buf[0] != 0x02 || buf[1] != 0x01 {
		t.Fatalf("address: got %d %v", n, buf)
	}
	if v, n := TAddr.Decoding(buf); v != 0x0102 || n != 2 {
		t.Fatalf("address decode: got %d %d", v, n)
	}
	if n := TImm8.Encoding(buf, 0x1ff); n != 1 || buf[0] != 0xff {
		t.Fatalf("imm8: got %d %v", n, buf)
	}
}
