// Package terminal renders selector and preview pages as plain text and
// drives them from line-based commands.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bakkerme/photoselector/internal/core"
	"github.com/bakkerme/photoselector/internal/selector"
)

type Screen struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewScreen(in io.Reader, out io.Writer) *Screen {
	return &Screen{in: bufio.NewScanner(in), out: out}
}

// Prompt prints label and reads one trimmed line. ok is false at end of input.
func (s *Screen) Prompt(label string) (line string, ok bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Screen) Printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

// ShowAlbum implements selector.Screen. Commands:
//
//	<n>     toggle item n of the current album
//	a <n>   switch to album n
//	p <n>   preview item n
//	ok      confirm
//	q       back out
func (s *Screen) ShowAlbum(ctx context.Context, page *selector.Page) error {
	albums := page.Albums()
	current := 0
	s.renderAlbum(page, current)
	for {
		if err := ctx.Err(); err != nil {
			page.Cancel()
			return err
		}
		select {
		case <-page.Done():
			// another holder of the page already finished it
			return nil
		default:
		}
		line, ok := s.Prompt("> ")
		if !ok {
			page.Cancel()
			return nil
		}
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "":
			continue
		case "ok":
			selected, err := page.Confirm()
			if err != nil {
				return err
			}
			s.Printf("selected %d item(s)\n", len(selected))
			return nil
		case "q":
			page.Cancel()
			return nil
		case "a":
			n, err := parseIndex(arg, len(albums))
			if err != nil {
				s.Printf("%v\n", err)
				continue
			}
			current = n
			s.renderAlbum(page, current)
		case "p":
			items := albums[current].Items
			n, err := parseIndex(arg, len(items))
			if err != nil {
				s.Printf("%v\n", err)
				continue
			}
			if err := s.ShowPreview(ctx, items, n); err != nil {
				return err
			}
			s.renderAlbum(page, current)
		default:
			items := albums[current].Items
			n, err := parseIndex(cmd, len(items))
			if err != nil {
				s.Printf("unknown command %q\n", line)
				continue
			}
			checked, err := page.Toggle(items[n].ID)
			switch {
			case errors.Is(err, selector.ErrLimitReached):
				s.Printf("you can select at most %d item(s)\n", page.MaxCount())
			case err != nil:
				return err
			case checked:
				s.Printf("checked %s\n", label(items[n]))
			default:
				s.Printf("unchecked %s\n", label(items[n]))
			}
		}
	}
}

// ShowPreview implements selector.Screen. n and b page forward and back,
// q or end of input leaves.
func (s *Screen) ShowPreview(ctx context.Context, items []core.Photo, position int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := items[position]
		s.Printf("[%d/%d] %s %s (%s)\n", position+1, len(items), label(item), item.URI, item.Mime)
		line, ok := s.Prompt("preview> ")
		if !ok {
			return nil
		}
		switch line {
		case "n":
			if position < len(items)-1 {
				position++
			}
		case "b":
			if position > 0 {
				position--
			}
		case "q", "":
			return nil
		}
	}
}

func (s *Screen) renderAlbum(page *selector.Page, current int) {
	albums := page.Albums()
	names := make([]string, 0, len(albums))
	for i, album := range albums {
		marker := " "
		if i == current {
			marker = "*"
		}
		names = append(names, fmt.Sprintf("%s%d:%s(%d)", marker, i+1, album.Name, len(album.Items)))
	}
	s.Printf("albums: %s\n", strings.Join(names, " "))
	s.Printf("checked %d/%d\n", len(page.Selected()), page.MaxCount())
	for i, item := range albums[current].Items {
		box := "[ ]"
		if page.IsSelected(item.ID) {
			box = "[x]"
		}
		s.Printf("%s %2d %s\n", box, i+1, label(item))
	}
}

func label(item core.Photo) string {
	name := item.Path
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = string(item.ID)
	}
	if item.IsVideo() {
		return name + " (video)"
	}
	return name
}

// parseIndex turns a 1-based user index into a 0-based one.
func parseIndex(raw string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("pick a number between 1 and %d", n)
	}
	return i - 1, nil
}
