package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestLoad(t *testing.T) {
	e, err := Load("utf-8")
	assert.NoError(t, err)
	assert.Equal(t, unicode.UTF8, e)

	e, err = Load("UTF8")
	assert.NoError(t, err)
	assert.Equal(t, unicode.UTF8, e)

	e, err = Load("ISO-8859-1")
	assert.NoError(t, err)
	assert.Equal(t, charmap.Windows1252, e)

	e, err = Load("koi8-r")
	assert.NoError(t, err)
	assert.Equal(t, charmap.KOI8R, e)

	e, err = Load("shift_jis")
	assert.NoError(t, err)
	assert.NotNil(t, e)
}

func TestLoadUnknown(t *testing.T) {
	e, err := Load("no-such-charset")
	assert.Error(t, err)
	assert.Nil(t, e)
	assert.Contains(t, err.Error(), "no-such-charset")
}

func TestLoadDecode(t *testing.T) {
	e, err := Load("iso-8859-5")
	assert.NoError(t, err)
	s, err := e.NewDecoder().String("\xbf\xe0\xd8\xd2\xd5\xe2")
	assert.NoError(t, err)
	assert.Equal(t, "Привет", s)
}
