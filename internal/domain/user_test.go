package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_TemplateDefaultFor(t *testing.T) {
	u := &User{TemplateDefaults: [7]string{"sunday", "weekday", "weekday", "weekday", "weekday", "weekday", "saturday"}}

	assert.Equal(t, "sunday", u.TemplateDefaultFor(0))
	assert.Equal(t, "weekday", u.TemplateDefaultFor(1))
	assert.Equal(t, "saturday", u.TemplateDefaultFor(6))
	assert.Equal(t, "", u.TemplateDefaultFor(-1))
	assert.Equal(t, "", u.TemplateDefaultFor(7))
}
