package selector

import (
	"sync"

	"github.com/bakkerme/photoselector/internal/core"
	"github.com/bakkerme/photoselector/internal/gallery"
	"github.com/bakkerme/photoselector/internal/selection"
)

type pageState int

const (
	pageOpen pageState = iota
	pageConfirmed
	pageCanceled
)

// Page is one opening of the selector screen. Items confirmed the last time
// the same session was opened start out checked, and an item is never held
// twice: toggling a checked item unchecks it.
type Page struct {
	albumType core.AlbumType
	maxCount  int
	handle    *selection.Handle
	items     []core.Photo
	albums    []gallery.Album
	index     map[core.ItemID]int

	mu       sync.Mutex
	selected []core.ItemID
	state    pageState
	result   []core.Photo
	done     chan struct{}
}

func newPage(albumType core.AlbumType, maxCount int, handle *selection.Handle, items []core.Photo, names gallery.NameTransformer) *Page {
	p := &Page{
		albumType: albumType,
		maxCount:  maxCount,
		handle:    handle,
		items:     items,
		albums:    gallery.GroupAlbums(items, names),
		index:     make(map[core.ItemID]int, len(items)),
		done:      make(chan struct{}),
	}
	for i, item := range items {
		p.index[item.ID] = i
	}
	seed := handle.Seed()
	for _, item := range items {
		if len(p.selected) >= maxCount {
			break
		}
		if seed.Has(item.ID) {
			p.selected = append(p.selected, item.ID)
		}
	}
	return p
}

func (p *Page) AlbumType() core.AlbumType {
	return p.albumType
}

func (p *Page) MaxCount() int {
	return p.maxCount
}

func (p *Page) SessionID() selection.SessionID {
	return p.handle.SessionID()
}

func (p *Page) Items() []core.Photo {
	return append([]core.Photo(nil), p.items...)
}

func (p *Page) Albums() []gallery.Album {
	return append([]gallery.Album(nil), p.albums...)
}

func (p *Page) IsSelected(id core.ItemID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position(id) >= 0
}

// Remembered reports whether id was part of the session's previous
// confirmed selection.
func (p *Page) Remembered(id core.ItemID) bool {
	return p.handle.Contains(id)
}

// Selected returns the checked items in the order they were checked.
func (p *Page) Selected() []core.Photo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.photos()
}

// Toggle checks or unchecks id and reports whether it is now checked.
func (p *Page) Toggle(id core.ItemID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != pageOpen {
		return false, ErrPageClosed
	}
	if _, ok := p.index[id]; !ok {
		return false, ErrUnknownItem
	}
	if i := p.position(id); i >= 0 {
		p.selected = append(p.selected[:i], p.selected[i+1:]...)
		return false, nil
	}
	if len(p.selected) >= p.maxCount {
		return false, ErrLimitReached
	}
	p.selected = append(p.selected, id)
	return true, nil
}

// Confirm closes the page, stores the checked ids for the session and
// returns the checked items, previously remembered ones included.
func (p *Page) Confirm() ([]core.Photo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != pageOpen {
		return nil, ErrPageClosed
	}
	p.handle.Commit(append([]core.ItemID(nil), p.selected...))
	p.result = p.photos()
	p.state = pageConfirmed
	close(p.done)
	return p.result, nil
}

// Cancel closes the page without touching the session.
func (p *Page) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != pageOpen {
		return
	}
	p.state = pageCanceled
	close(p.done)
}

// Done is closed once the page was confirmed or canceled.
func (p *Page) Done() <-chan struct{} {
	return p.done
}

func (p *Page) Result() ([]core.Photo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.state == pageConfirmed
}

func (p *Page) position(id core.ItemID) int {
	for i, selected := range p.selected {
		if selected == id {
			return i
		}
	}
	return -1
}

func (p *Page) photos() []core.Photo {
	out := make([]core.Photo, 0, len(p.selected))
	for _, id := range p.selected {
		out = append(out, p.items[p.index[id]])
	}
	return out
}
