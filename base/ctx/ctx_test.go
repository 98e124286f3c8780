package ctx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithValue(t *testing.T) {
	c := Background()
	c = WithValue(c, "bidId", 7)
	assert.Equal(t, 7, c.Value("bidId"))
}

func TestWithValues(t *testing.T) {
	c := Background()
	c = WithValues(c, map[string]interface{}{
		"token":       "0xdead",
		"beneficiary": "0xbeef",
	})
	assert.Equal(t, "0xdead", c.Value("token"))
	assert.Equal(t, "0xbeef", c.Value("beneficiary"))
}

func TestWithTimeout(t *testing.T) {
	c, cancel := WithTimeout(Background(), time.Millisecond)
	defer cancel()
	<-c.Done()
	assert.Error(t, c.Err())
}
