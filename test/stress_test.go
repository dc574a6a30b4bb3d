//go:build stress

package test

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"github.com/gostonefire/slabhashmap"
	"github.com/gostonefire/slabhashmap/hashfunc"
	"github.com/gostonefire/slabhashmap/storage"
	"github.com/gostonefire/slabhashmap/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func bytesToStrings(d []byte) []string {
	r := make([]string, len(d))
	for i, v := range d {
		r[i] = strconv.Itoa(int(v))
	}
	return r
}

func stringsToBytes(d []string) ([]byte, error) {
	r := make([]byte, len(d))
	for i, v := range d {
		b, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		r[i] = uint8(b)
	}
	return r, nil
}

func createAndStoreTestdata(rnd *rand.Rand, amount int, fileName string) error {
	data := make([]byte, 30)

	f, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func(f *os.File) { _ = f.Close() }(f)

	for i := 0; i < amount; i++ {
		_, _ = rnd.Read(data)
		line := strings.Join(bytesToStrings(data), ",")
		_, err = fmt.Fprintln(f, line)
		if err != nil {
			return err
		}
	}

	return nil
}

// forEachRecord - Calls fn with key and value of every line in fileName
func forEachRecord(fileName string, fn func(key, value []byte) error) error {
	f, err := os.OpenFile(fileName, os.O_RDONLY, 0644)
	if err != nil {
		return err
	}
	defer func(f *os.File) { _ = f.Close() }(f)

	var line string
	fr := bufio.NewReader(f)

	for {
		line, err = fr.ReadString('\n')
		if errors.Is(err, io.EOF) {
			break
		}
		line = strings.TrimRight(line, "\n\r")
		data, err := stringsToBytes(strings.Split(line, ","))
		if err != nil {
			return err
		}
		if err = fn(data[:20], data[20:]); err != nil {
			return err
		}
	}

	return nil
}

func setTestdata(fileName string, shm *slabhashmap.SlabHashMap[[]byte, []byte]) error {
	return forEachRecord(fileName, func(key, value []byte) error {
		return shm.Set(key, value)
	})
}

func getTestdata(fileName string, shm *slabhashmap.SlabHashMap[[]byte, []byte], shouldNotExist bool) error {
	return forEachRecord(fileName, func(key, value []byte) error {
		got, err := shm.Get(key)
		if shouldNotExist {
			if err == nil {
				return fmt.Errorf("get should not get data")
			} else if !errors.Is(err, slabhashmap.NoRecordFound{}) {
				return err
			}
			return nil
		}
		if err != nil {
			return err
		}
		if !bytes.Equal(got, value) {
			return fmt.Errorf("got wrong value")
		}
		return nil
	})
}

type TestCaseStressTest struct {
	name      string
	buckets   int
	hFunc     hashfunc.HashFunction
	nTestdata int
}

func TestStress(t *testing.T) {
	t.Run("stress tests for memory mapped slab hash maps", func(t *testing.T) {
		// Prepare
		tests := []TestCaseStressTest{
			{name: "xxhash", buckets: 100000, hFunc: hashfunc.XXHash64, nTestdata: 500000},
			{name: "fnv1a", buckets: 100000, hFunc: hashfunc.FNV1a64, nTestdata: 500000},
			{name: "sha256", buckets: 20000, hFunc: hashfunc.SHA256, nTestdata: 100000},
		}

		for _, test := range tests {
			t.Run(fmt.Sprintf("handles lots of collisions with %s", test.name), func(t *testing.T) {
				// Prepare test data
				dir := t.TempDir()
				rnd := rand.New(rand.NewSource(123))
				set1 := filepath.Join(dir, "testdata_1.txt")
				set2 := filepath.Join(dir, "testdata_2.txt")
				set3 := filepath.Join(dir, "testdata_3.txt")
				require.NoError(t, createAndStoreTestdata(rnd, test.nTestdata, set1), "create testdata 1")
				require.NoError(t, createAndStoreTestdata(rnd, test.nTestdata, set2), "create testdata 2")
				require.NoError(t, createAndStoreTestdata(rnd, test.nTestdata, set3), "create testdata 3")

				// Prepare slab hash map
				factory := storage.NewMMapFactory(filepath.Join(dir, "buffers"))
				opts := slabhashmap.DefaultOptions().WithName(test.name).WithNumHashBuckets(test.buckets)
				shm, info, err := slabhashmap.NewSlabHashMap[[]byte, []byte](opts, factory, strategy.NewBytes(20, 10), test.hFunc)
				require.NoError(t, err, "create slab hash map")

				// Set first two sets of test data
				assert.NoError(t, setTestdata(set1, shm), "set test set 1")
				assert.NoError(t, setTestdata(set2, shm), "set test set 2")

				// Check, set 3 not there yet
				assert.NoError(t, getTestdata(set1, shm, false), "get test set 1")
				assert.NoError(t, getTestdata(set2, shm, false), "get test set 2")
				assert.NoError(t, getTestdata(set3, shm, true), "get test set 3, should not exist")

				// Set third set and set the second one again
				assert.NoError(t, setTestdata(set3, shm), "set test set 3")
				assert.NoError(t, setTestdata(set2, shm), "set test set 2 again")
				assert.NoError(t, factory.Sync(), "sync buffers")

				// Check all three test sets
				assert.NoError(t, getTestdata(set1, shm, false), "get test set 1")
				assert.NoError(t, getTestdata(set2, shm, false), "get test set 2")
				assert.NoError(t, getTestdata(set3, shm, false), "get test set 3")

				// Get stats
				stat := shm.Stat()
				assert.Equal(t, uint64(3*test.nTestdata), stat.Inserts, "every record inserted once")
				assert.Equal(t, uint64(test.nTestdata), stat.Updates, "second set updated")
				assert.Zero(t, stat.DiscardedOccupants, "nothing discarded")
				assert.Greater(t, stat.Relocations, uint64(0), "collisions relocated")
				assert.LessOrEqual(t, stat.Relocations, stat.SlabAllocations-1, "every relocation adds at least one slab")
				assert.Len(t, factory.Files(), shm.Info().Buffers, "one file per buffer")
				assert.Equal(t, info.BufferSize, shm.Info().BufferSize, "buffer size fixed")

				// Clean up
				assert.NoError(t, factory.RemoveFiles(), "remove files")
			})
		}
	})
}
