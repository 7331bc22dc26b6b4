package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertZonePatched_PanicsWhenNoPromisePatchLoaded(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		ie, ok := AsInvariantError(asError(r))
		require.True(t, ok)
		assert.Equal(t, InvariantNotPatched, ie.Code)
	}()
	AssertZonePatched()
	t.Fatal("expected panic")
}

func TestAssertZonePatched_SucceedsOnceZoneAwarePromiseIsLoaded(t *testing.T) {
	LoadPatch("ZoneAwarePromise", func(api *PrivateAPI) any { return "native-promise" })
	assert.NotPanics(t, func() {
		AssertZonePatched()
	})
}
