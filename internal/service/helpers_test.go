package service

import (
	"context"
	"errors"
	"sync"

	"studyflow/internal/tts"
)

type fakeLLM struct {
	mu     sync.Mutex
	out    string
	err    error
	calls  int
	system string
	user   string
}

func (f *fakeLLM) Generate(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.system, f.user = system, user
	return f.out, f.err
}

type fakeSynth struct {
	name  string
	audio *tts.Audio
	err   error
	calls int
}

func (f *fakeSynth) Name() string { return f.name }

func (f *fakeSynth) Synthesize(_ context.Context, _ string) (*tts.Audio, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

// brokenStore fails every operation as an unreachable bucket would.
type brokenStore struct{}

var errStoreDown = errors.New("storage unavailable")

func (brokenStore) Put(context.Context, string, string, []byte, string) (string, error) {
	return "", errStoreDown
}
func (brokenStore) Get(context.Context, string, string) ([]byte, error) { return nil, errStoreDown }
func (brokenStore) Delete(context.Context, string, string) error       { return errStoreDown }
