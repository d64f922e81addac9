package access

import (
	"testing"

	"otchetnik/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestEmptyListsAllowEveryone(t *testing.T) {
	p := NewPolicy(config.AccessConfig{})

	assert.True(t, p.AllowChat(-100123))
	assert.True(t, p.AllowChat(42))
	assert.True(t, p.AllowUser(111))
	assert.True(t, p.AllowUser(0))
	assert.True(t, p.Allow(-100123, 111))
}

func TestChatAllowList(t *testing.T) {
	p := NewPolicy(config.AccessConfig{AllowedChatIDs: []int64{-100123, 42}})

	assert.True(t, p.AllowChat(-100123))
	assert.True(t, p.AllowChat(42))
	assert.False(t, p.AllowChat(7))
	// users stay unrestricted
	assert.True(t, p.AllowUser(999))
}

func TestUserAllowList(t *testing.T) {
	p := NewPolicy(config.AccessConfig{AllowedUserIDs: []int64{111}})

	assert.True(t, p.AllowUser(111))
	assert.False(t, p.AllowUser(222))
	assert.False(t, p.AllowUser(0), "unknown sender is denied when list is non-empty")
}

func TestCombinedCheck(t *testing.T) {
	p := NewPolicy(config.AccessConfig{
		AllowedChatIDs: []int64{-1},
		AllowedUserIDs: []int64{111},
	})

	assert.True(t, p.Allow(-1, 111))
	assert.False(t, p.Allow(-1, 222))
	assert.False(t, p.Allow(-2, 111))
}
