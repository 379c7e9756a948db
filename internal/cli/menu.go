// Package cli implements the interactive console menu over a BookService.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"library/internal/service"
)

const banner = `
==============================
   LIBRARY APP (RELATIONAL)
==============================
1. Add a Book (Create)
2. List all Books (Read)
3. Update Book Title (Update)
4. Delete a Book (Delete)
5. Exit`

// Menu reads choices line by line from in and writes prompts and results to out.
// It is not safe for concurrent use.
type Menu struct {
	svc     service.BookService
	in      *bufio.Scanner
	out     io.Writer
	timeout time.Duration
}

// NewMenu builds a menu. A positive timeout bounds every store round trip.
func NewMenu(svc service.BookService, in io.Reader, out io.Writer, timeout time.Duration) *Menu {
	return &Menu{
		svc:     svc,
		in:      bufio.NewScanner(in),
		out:     out,
		timeout: timeout,
	}
}

// Run loops until the user exits or input ends, both of which return nil.
// Invalid ids, missing books and store errors are reported and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.println(banner)
		choice, err := m.prompt("Choose an option: ")
		if err != nil {
			return m.done(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.create(ctx)
		case "2":
			m.list(ctx)
		case "3":
			err = m.update(ctx)
		case "4":
			err = m.delete(ctx)
		case "5":
			m.println("Goodbye!")
			return nil
		default:
			m.println("Invalid choice.")
		}
		if err != nil {
			return m.done(err)
		}
	}
}

// done maps end of input to a clean exit.
func (m *Menu) done(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (m *Menu) create(ctx context.Context) error {
	m.println("\n--- ADD NEW BOOK ---")
	title, err := m.prompt("Enter book title: ")
	if err != nil {
		return err
	}
	year, err := m.prompt("Enter publication year: ")
	if err != nil {
		return err
	}
	authorID, err := m.prompt("Enter Author ID (24-character Hex String): ")
	if err != nil {
		return err
	}

	opCtx, cancel := m.opContext(ctx)
	defer cancel()

	_, err = m.svc.Create(opCtx, title, year, strings.TrimSpace(authorID))
	switch {
	case err == nil:
		m.println("SUCCESS: Book added with Author ID reference.")
	case errors.Is(err, service.ErrInvalidID):
		m.println("ERROR: Invalid Author ID format. It must be a hex string. " + detail(err))
	case errors.Is(err, service.ErrAuthorNotFound):
		m.println("ERROR: Author not found.")
	default:
		m.println("ERROR: " + err.Error())
	}
	return nil
}

func (m *Menu) list(ctx context.Context) {
	m.println("\n--- LIST OF BOOKS ---")

	opCtx, cancel := m.opContext(ctx)
	defer cancel()

	count := 0
	for b, err := range m.svc.List(opCtx) {
		if err != nil {
			m.println("ERROR: " + err.Error())
			return
		}
		m.println(fmt.Sprintf("ID: %s | Title: %s | Author (Ref ID): %s | Year: %s",
			b.ID, b.Title, b.Author, b.PublishedYear))
		count++
	}
	if count == 0 {
		m.println("Database is empty.")
	}
}

func (m *Menu) update(ctx context.Context) error {
	m.println("\n--- UPDATE BOOK TITLE ---")
	m.list(ctx)

	id, err := m.prompt("\nEnter the ID of the book to update: ")
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)

	opCtx, cancel := m.opContext(ctx)
	err = m.svc.Exists(opCtx, id)
	cancel()
	if err != nil {
		m.reportByID(err)
		return nil
	}

	title, err := m.prompt("Enter new title: ")
	if err != nil {
		return err
	}

	opCtx, cancel = m.opContext(ctx)
	defer cancel()
	if err := m.svc.UpdateTitle(opCtx, id, title); err != nil {
		m.reportByID(err)
		return nil
	}
	m.println("SUCCESS: Book title updated.")
	return nil
}

func (m *Menu) delete(ctx context.Context) error {
	m.println("\n--- DELETE BOOK ---")
	m.list(ctx)

	id, err := m.prompt("\nEnter the ID of the book to delete: ")
	if err != nil {
		return err
	}

	opCtx, cancel := m.opContext(ctx)
	defer cancel()
	if err := m.svc.Delete(opCtx, strings.TrimSpace(id)); err != nil {
		m.reportByID(err)
		return nil
	}
	m.println("SUCCESS: Book deleted.")
	return nil
}

func (m *Menu) reportByID(err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		m.println("ERROR: Invalid ID format. " + detail(err))
	case errors.Is(err, service.ErrNotFound):
		m.println("ERROR: Book not found.")
	default:
		m.println("ERROR: " + err.Error())
	}
}

// prompt writes label without a newline and returns the next input line.
// It returns io.EOF once input is exhausted.
func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return m.in.Text(), nil
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// detail strips the classification prefix so only the parser's message is shown.
func detail(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrInvalidID.Error()+": ")
}
