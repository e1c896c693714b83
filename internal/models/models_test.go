package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostString(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "short", text: "Test post", want: "Test post"},
		{name: "exactly fifteen", text: "123456789012345", want: "123456789012345"},
		{name: "long", text: "A long test post for the checks", want: "A long test pos"},
		{name: "multibyte", text: "Длинный тестовый пост", want: "Длинный тестовы"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Post{Text: tt.text}.String())
		})
	}
}

func TestGroupAndUserString(t *testing.T) {
	require.Equal(t, "Test group", Group{Title: "Test group", Slug: "test"}.String())
	require.Equal(t, "auth", User{Username: "auth"}.String())
}

func TestUserFullName(t *testing.T) {
	require.Equal(t, "Leo Tolstoy", User{Username: "leo", FirstName: "Leo", LastName: "Tolstoy"}.FullName())
	require.Equal(t, "leo", User{Username: "leo"}.FullName())
	require.True(t, User{Role: RoleAdmin}.IsAdmin())
	require.False(t, User{Role: RoleUser}.IsAdmin())
}
