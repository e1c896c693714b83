package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Challenge is one arithmetic question shown on the signup form.
type Challenge struct {
	Question string
	Answer   int
}

// CaptchaService draws signup challenges. Safe for concurrent use.
type CaptchaService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	return NewCaptchaServiceWithSeed(time.Now().UnixNano())
}

func NewCaptchaServiceWithSeed(seed int64) *CaptchaService {
	return &CaptchaService{rnd: rand.New(rand.NewSource(seed))}
}

// Next returns "a + b" or "a - b" over single digits, never below zero.
func (s *CaptchaService) Next() Challenge {
	s.mu.Lock()
	a, b, minus := s.rnd.Intn(10), s.rnd.Intn(10), s.rnd.Intn(2) == 1
	s.mu.Unlock()

	if !minus {
		return Challenge{Question: fmt.Sprintf("%d + %d", a, b), Answer: a + b}
	}
	if a < b {
		a, b = b, a
	}
	return Challenge{Question: fmt.Sprintf("%d - %d", a, b), Answer: a - b}
}

// Verify reports whether input, as typed by the visitor, equals expected.
func (s *CaptchaService) Verify(expected int, input string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	return err == nil && n == expected
}
