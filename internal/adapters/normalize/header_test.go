package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/ucdstore/internal/adapters/normalize"
)

func TestHeaderStripper_Normalize(t *testing.T) {
	t.Parallel()

	v15 := "# DerivedAge-15.0.0.txt\n" +
		"# Date: 2022-08-03, 17:21:47 GMT\n" +
		"# © 2022 Unicode®, Inc.\n" +
		"# For terms of use, see https://www.unicode.org/terms_of_use.html\n" +
		"\n" +
		"0000..001F    ; 1.1 #  [32] <control-0000>..<control-001F>\n"
	v16 := "# DerivedAge-16.0.0.txt\n" +
		"# Date: 2024-04-30, 21:48:17 GMT\n" +
		"# © 2024 Unicode®, Inc.\n" +
		"# For terms of use, see https://www.unicode.org/terms_of_use.html\n" +
		"\n" +
		"0000..001F    ; 1.1 #  [32] <control-0000>..<control-001F>\n"

	n := normalize.NewHeaderStripper()
	a := n.Normalize("DerivedAge.txt", []byte(v15))
	b := n.Normalize("DerivedAge.txt", []byte(v16))

	assert.Equal(t, string(a), string(b))
	assert.Equal(t,
		"# For terms of use, see https://www.unicode.org/terms_of_use.html\n\n"+
			"0000..001F    ; 1.1 #  [32] <control-0000>..<control-001F>\n",
		string(a))
}

func TestHeaderStripper_KeepsBody(t *testing.T) {
	t.Parallel()

	in := "0041;LATIN CAPITAL LETTER A\n# Date: not a header\n"
	out := normalize.NewHeaderStripper().Normalize("UnicodeData.txt", []byte(in))
	assert.Equal(t, in, string(out))
}

func TestHeaderStripper_CRLF(t *testing.T) {
	t.Parallel()

	in := "# Blocks-16.0.0.txt\r\n# Copyright (c) 2024 Unicode, Inc.\r\n0000..007F; Basic Latin\r\n"
	out := normalize.NewHeaderStripper().Normalize("Blocks.txt", []byte(in))
	assert.Equal(t, "0000..007F; Basic Latin\r\n", string(out))
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	in := []byte("# Date: x\n")
	assert.Equal(t, in, normalize.Identity{}.Normalize("a.txt", in))
}
