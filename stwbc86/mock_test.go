package stwbc86

import (
	"context"
	"sync"
)

// mockBus is a scripted Bus. Commits update info unless ignoreCommit is set.
type mockBus struct {
	mu sync.Mutex

	info ChipInfo
	// status is served by status reads in order; the last value repeats.
	status       []byte
	ignoreCommit bool
	noMem        bool
	writeErr     error
	readErr      error

	writes  [][]byte
	reads   [][]byte
	delays  []uint32
	logs    []string
	allocs  int
	frees   int
	statusN int
}

func newMockBus(info ChipInfo) *mockBus {
	return &mockBus{info: info, status: []byte{0x00}}
}

func (b *mockBus) Write(ctx context.Context, p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	b.writes = append(b.writes, append([]byte(nil), p...))
	if p[0] == OpCommit && !b.ignoreCommit {
		id := uint16(p[2])<<8 | uint16(p[3])
		switch Section(p[1]) {
		case SectionPatch:
			b.info.PatchID = id
		case SectionCfg:
			b.info.CfgID = id
		}
	}
	return nil
}

func (b *mockBus) WriteRead(ctx context.Context, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readErr != nil {
		return b.readErr
	}
	b.reads = append(b.reads, append([]byte(nil), w...))
	switch uint16(w[0])<<8 | uint16(w[1]) {
	case RegChipInfo:
		raw, err := b.info.MarshalBinary()
		if err != nil {
			return err
		}
		copy(r, raw)
	case RegStatus:
		i := b.statusN
		if i >= len(b.status) {
			i = len(b.status) - 1
		}
		r[0] = b.status[i]
		b.statusN++
	}
	return nil
}

func (b *mockBus) Delay(ctx context.Context, ms uint32) error {
	b.mu.Lock()
	b.delays = append(b.delays, ms)
	b.mu.Unlock()
	return ctx.Err()
}

func (b *mockBus) Alloc(size int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.noMem {
		return nil
	}
	b.allocs++
	return make([]byte, size)
}

func (b *mockBus) Free([]byte) {
	b.mu.Lock()
	b.frees++
	b.mu.Unlock()
}

func (b *mockBus) Log(level Level, msg string) {
	b.mu.Lock()
	b.logs = append(b.logs, level.String()+": "+msg)
	b.mu.Unlock()
}
