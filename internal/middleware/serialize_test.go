package middleware

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserSerializerSerializesSameUser(t *testing.T) {
	s := NewUserSerializer()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Lock(1)
			defer s.Unlock(1)
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestUserSerializerDifferentUsersDoNotBlock(t *testing.T) {
	s := NewUserSerializer()

	s.Lock(1)
	defer s.Unlock(1)

	done := make(chan struct{})
	go func() {
		s.Lock(2)
		s.Unlock(2)
		close(done)
	}()

	<-done // would deadlock if user 2 shared user 1's lock
}
