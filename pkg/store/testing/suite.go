// Package testing provides a reusable contract test suite for store.Store
// implementations. It tests the interface contract, not implementation
// details, so every backend (memory, badger, future ones) runs the exact
// same behavioral tests.
package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShipFail/promptware-sub001/pkg/store"
	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// StoreTestSuite runs the Store contract against an implementation.
type StoreTestSuite struct {
	// NewStore creates a fresh, empty Store for each test. Each test closes
	// the store it creates, so the factory must not share state between
	// calls.
	NewStore func(t *testing.T) store.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(test *testing.T) {
	test.Run("RoundTrip", suite.TestRoundTrip)
	test.Run("GetMissing", suite.TestGetMissing)
	test.Run("Overwrite", suite.TestOverwrite)
	test.Run("Delete", suite.TestDelete)
	test.Run("DeleteMissing", suite.TestDeleteMissing)
	test.Run("ScanPrefix", suite.TestScanPrefix)
	test.Run("ScanEmptyPrefix", suite.TestScanEmptyPrefix)
	test.Run("ScanSorted", suite.TestScanSorted)
	test.Run("OriginIsolation", suite.TestOriginIsolation)
	test.Run("OriginIsolationScan", suite.TestOriginIsolationScan)
	test.Run("OriginIsolationHostileBytes", suite.TestOriginIsolationHostileBytes)
	test.Run("ContextCancellation", suite.TestContextCancellation)
}

const (
	originA = vfs.Origin("https://alpha.local")
	originB = vfs.Origin("https://beta.local")
)

// TestRoundTrip verifies a written value reads back exactly.
func (suite *StoreTestSuite) TestRoundTrip(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()
	ctx := context.Background()

	require.NoError(test, s.Put(ctx, originA, "sys/status", "active"))

	value, err := s.Get(ctx, originA, "sys/status")
	require.NoError(test, err)
	assert.Equal(test, "active", value)
}

// TestGetMissing verifies a missing key reports ErrKeyNotFound.
func (suite *StoreTestSuite) TestGetMissing(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()

	_, err := s.Get(context.Background(), originA, "no/such/key")
	require.ErrorIs(test, err, store.ErrKeyNotFound)
}

// TestOverwrite verifies last-write-wins on repeated puts.
func (suite *StoreTestSuite) TestOverwrite(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()
	ctx := context.Background()

	require.NoError(test, s.Put(ctx, originA, "k", "first"))
	require.NoError(test, s.Put(ctx, originA, "k", "second"))

	value, err := s.Get(ctx, originA, "k")
	require.NoError(test, err)
	assert.Equal(test, "second", value)
}

// TestDelete verifies deleted keys become missing.
func (suite *StoreTestSuite) TestDelete(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()
	ctx := context.Background()

	require.NoError(test, s.Put(ctx, originA, "k", "v"))
	require.NoError(test, s.Delete(ctx, originA, "k"))

	_, err := s.Get(ctx, originA, "k")
	require.ErrorIs(test, err, store.ErrKeyNotFound)
}

// TestDeleteMissing verifies deleting an absent key reports ErrKeyNotFound
// rather than silently succeeding.
func (suite *StoreTestSuite) TestDeleteMissing(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()

	err := s.Delete(context.Background(), originA, "never-written")
	require.ErrorIs(test, err, store.ErrKeyNotFound)
}

// TestScanPrefix verifies prefix scans return exactly the matching keys.
func (suite *StoreTestSuite) TestScanPrefix(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()
	ctx := context.Background()

	require.NoError(test, s.Put(ctx, originA, "user/a", "1"))
	require.NoError(test, s.Put(ctx, originA, "user/b", "2"))
	require.NoError(test, s.Put(ctx, originA, "vault/token", "3"))

	keys, err := s.Scan(ctx, originA, "user/")
	require.NoError(test, err)
	assert.Equal(test, []string{"user/a", "user/b"}, keys)
}

// TestScanEmptyPrefix verifies an empty prefix enumerates every key.
func (suite *StoreTestSuite) TestScanEmptyPrefix(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()
	ctx := context.Background()

	require.NoError(test, s.Put(ctx, originA, "a", "1"))
	require.NoError(test, s.Put(ctx, originA, "b", "2"))

	keys, err := s.Scan(ctx, originA, "")
	require.NoError(test, err)
	assert.Equal(test, []string{"a", "b"}, keys)
}

// TestScanSorted verifies listings come back lexicographically sorted
// regardless of insertion order.
func (suite *StoreTestSuite) TestScanSorted(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()
	ctx := context.Background()

	require.NoError(test, s.Put(ctx, originA, "c", "3"))
	require.NoError(test, s.Put(ctx, originA, "a", "1"))
	require.NoError(test, s.Put(ctx, originA, "b", "2"))

	keys, err := s.Scan(ctx, originA, "")
	require.NoError(test, err)
	assert.Equal(test, []string{"a", "b", "c"}, keys)
}

// TestOriginIsolation verifies a key written under one origin is invisible
// under another.
func (suite *StoreTestSuite) TestOriginIsolation(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()
	ctx := context.Background()

	require.NoError(test, s.Put(ctx, originA, "shared-key", "alpha-value"))

	_, err := s.Get(ctx, originB, "shared-key")
	require.ErrorIs(test, err, store.ErrKeyNotFound)

	// And the original is untouched.
	value, err := s.Get(ctx, originA, "shared-key")
	require.NoError(test, err)
	assert.Equal(test, "alpha-value", value)
}

// TestOriginIsolationScan verifies scans never surface another origin's
// keys, even with an empty prefix.
func (suite *StoreTestSuite) TestOriginIsolationScan(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()
	ctx := context.Background()

	require.NoError(test, s.Put(ctx, originA, "a1", "1"))
	require.NoError(test, s.Put(ctx, originA, "a2", "2"))
	require.NoError(test, s.Put(ctx, originB, "b1", "3"))

	keys, err := s.Scan(ctx, originA, "")
	require.NoError(test, err)
	assert.Equal(test, []string{"a1", "a2"}, keys)

	keys, err = s.Scan(ctx, originB, "")
	require.NoError(test, err)
	assert.Equal(test, []string{"b1"}, keys)
}

// TestOriginIsolationHostileBytes verifies isolation holds even when one
// canonical origin contains bytes a backend might use as internal key
// delimiters. "https://h/p:k:q" is a well-formed URL that extends
// "https://h/p"; no layout trick may let the longer origin's entries appear
// under the shorter one, or vice versa.
func (suite *StoreTestSuite) TestOriginIsolationHostileBytes(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()
	ctx := context.Background()

	short := vfs.Origin("https://h/p")
	long := vfs.Origin("https://h/p:k:q")

	require.NoError(test, s.Put(ctx, long, "x", "long-secret"))
	require.NoError(test, s.Put(ctx, short, "y", "short-secret"))

	keys, err := s.Scan(ctx, short, "")
	require.NoError(test, err)
	assert.Equal(test, []string{"y"}, keys)

	keys, err = s.Scan(ctx, long, "")
	require.NoError(test, err)
	assert.Equal(test, []string{"x"}, keys)

	_, err = s.Get(ctx, short, "q:k:x")
	require.ErrorIs(test, err, store.ErrKeyNotFound)
	_, err = s.Get(ctx, long, "x")
	require.NoError(test, err)
}

// TestContextCancellation verifies operations respect an already-cancelled
// context.
func (suite *StoreTestSuite) TestContextCancellation(test *testing.T) {
	s := suite.NewStore(test)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(test, s.Put(ctx, originA, "k", "v"))
	_, err := s.Get(ctx, originA, "k")
	assert.Error(test, err)
	_, err = s.Scan(ctx, originA, "")
	assert.Error(test, err)
	assert.Error(test, s.Delete(ctx, originA, "k"))
}
