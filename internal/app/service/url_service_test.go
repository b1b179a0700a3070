package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAllocator struct {
	codes []string
	err   error
}

func (f *fakeAllocator) Allocate(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(f.codes) == 0 {
		return "", ErrPoolExhausted
	}
	c := f.codes[0]
	f.codes = f.codes[1:]
	return c, nil
}

func TestURLService_AllocateAndBind(t *testing.T) {
	tests := []struct {
		name      string
		codes     []string
		allocErr  error
		preBound  []string
		bindErr   error
		wantCode  string
		wantErrIs error
		wantErr   bool
	}{
		{
			name:     "first code is free",
			codes:    []string{"aaaaab", "aaaaac"},
			wantCode: "aaaaab",
		},
		{
			name:     "bound code is discarded",
			codes:    []string{"aaaaab", "aaaaac"},
			preBound: []string{"aaaaab"},
			wantCode: "aaaaac",
		},
		{
			name:      "every attempt collides",
			codes:     []string{"aaaaab", "aaaaac", "aaaaad", "aaaaae"},
			preBound:  []string{"aaaaab", "aaaaac", "aaaaad"},
			wantErrIs: ErrCodeCollision,
		},
		{
			name:      "pool exhausted",
			allocErr:  ErrPoolExhausted,
			wantErrIs: ErrPoolExhausted,
		},
		{
			name:    "store failure",
			codes:   []string{"aaaaab"},
			bindErr: errors.New("database is locked"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			for _, c := range tt.preBound {
				store.urls[c] = "http://other"
			}
			store.err = tt.bindErr

			svc := NewURLService(&fakeAllocator{codes: tt.codes, err: tt.allocErr}, store, NewWriteGate(), zap.NewNop().Sugar())
			got, err := svc.AllocateAndBind(context.Background(), "https://example.com")

			switch {
			case tt.wantErrIs != nil:
				assert.ErrorIs(t, err, tt.wantErrIs)
			case tt.wantErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantCode, got)
				assert.Equal(t, "https://example.com", store.urls[got])
			}
		})
	}
}

type lookupStub struct {
	urls    map[string]string
	deleted []string
}

func (s *lookupStub) Lookup(_ context.Context, code string) (string, error) {
	target, ok := s.urls[code]
	if !ok {
		return "", ErrURLNotFound
	}
	return target, nil
}

func (s *lookupStub) Unbind(_ context.Context, code string) error {
	delete(s.urls, code)
	s.deleted = append(s.deleted, code)
	return nil
}

func TestGetURLService_Resolve(t *testing.T) {
	store := &lookupStub{urls: map[string]string{"aaaaab": "https://example.com"}}
	svc := NewGetURLService(store)

	got, err := svc.Resolve(context.Background(), "aaaaab")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)

	_, err = svc.Resolve(context.Background(), "zzzzzz")
	assert.ErrorIs(t, err, ErrURLNotFound)
}

func TestDeleteURLService_DeleteURL(t *testing.T) {
	store := &lookupStub{urls: map[string]string{"aaaaab": "https://example.com"}}
	svc := NewURLDeleter(store, NewWriteGate())

	require.NoError(t, svc.DeleteURL(context.Background(), "aaaaab"))
	assert.Equal(t, []string{"aaaaab"}, store.deleted)

	_, err := NewGetURLService(store).Resolve(context.Background(), "aaaaab")
	assert.ErrorIs(t, err, ErrURLNotFound)
}
