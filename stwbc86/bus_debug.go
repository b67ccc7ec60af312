package stwbc86

import "context"

type busDebug struct {
	id   string
	l    Logger
	next Bus
}

func (b *busDebug) Write(ctx context.Context, p []byte) error {
	b.l.Printf("%5s >>  write(%d)%s", b.id, len(p), hexDump(p))
	err := b.next.Write(ctx, p)
	b.l.Printf("%5s <<  write %+v", b.id, err)
	return err
}

func (b *busDebug) WriteRead(ctx context.Context, w, r []byte) error {
	b.l.Printf("%5s >>  write-read(%d, %d)%s", b.id, len(w), len(r), hexDump(w))
	err := b.next.WriteRead(ctx, w, r)
	b.l.Printf("%5s <<  write-read %+v", b.id, err)
	if err == nil {
		b.l.Printf("%s", hexDump(r))
	}
	return err
}

func (b *busDebug) Delay(ctx context.Context, ms uint32) error {
	return b.next.Delay(ctx, ms)
}

func (b *busDebug) Alloc(size int) []byte {
	p := b.next.Alloc(size)
	b.l.Printf("%5s --  alloc(%d) ok=%t", b.id, size, p != nil)
	return p
}

func (b *busDebug) Free(p []byte) {
	b.l.Printf("%5s --  free(%d)", b.id, cap(p))
	b.next.Free(p)
}

func (b *busDebug) Log(level Level, msg string) {
	b.next.Log(level, msg)
}
