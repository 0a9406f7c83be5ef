package cache

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestLoadOnce(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	calls := 0
	load := func(key string) (any, error) {
		calls++
		return key + "!", nil
	}
	for i := 0; i < 3; i++ {
		obj, err := Load("w.bin", load)
		is.NoErr(err)
		is.Equal(obj, "w.bin!")
	}
	is.Equal(calls, 1)

	Evict("w.bin")
	_, err := Load("w.bin", load)
	is.NoErr(err)
	is.Equal(calls, 2)
}

func TestFailedLoadNotCached(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	boom := errors.New("boom")
	_, err := Load("x", func(string) (any, error) { return nil, boom })
	is.Equal(err, boom)
	obj, err := Load("x", func(string) (any, error) { return 1, nil })
	is.NoErr(err)
	is.Equal(obj, 1)
}
