package archive_test

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/busarchive/pkg/archive"
)

type note struct {
	Text string
}

func (n *note) MarshalArchive(w *archive.Writer) error {
	w.String(n.Text)
	return w.Err()
}

func (n *note) UnmarshalArchive(r *archive.Reader, _ int) error {
	n.Text = r.String()
	return r.Err()
}

type board struct {
	Pinned []*note
}

func (b *board) MarshalArchive(w *archive.Writer) error {
	w.Len(len(b.Pinned))
	for _, n := range b.Pinned {
		w.Ref(n)
	}
	return w.Err()
}

func (b *board) UnmarshalArchive(r *archive.Reader, _ int) error {
	n := r.Len()
	for i := 0; i < n && r.Err() == nil; i++ {
		b.Pinned = append(b.Pinned, archive.ReadRef[note](r))
	}
	return r.Err()
}

func ExampleWriter_Encode() {
	// The same note pinned twice is written once and referenced by slot.
	shared := &note{Text: "buy milk"}
	var buf bytes.Buffer
	_ = archive.NewWriter(&buf).Encode(&board{Pinned: []*note{shared, shared}})
	fmt.Print(buf.String())
	// Output:
	// busarchive 1
	// v0 2
	// #0 v0 8 buy milk
	// @0
	// end
}

func ExampleReader_Decode() {
	in := "busarchive 1\nv0 3\n#0 v0 3 one\n@0\n#1 v0 3 one\nend\n"
	var b board
	if err := archive.NewReader(bytes.NewBufferString(in)).Decode(&b); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("notes:", len(b.Pinned))
	fmt.Println("first two shared:", b.Pinned[0] == b.Pinned[1])
	fmt.Println("third shared:", b.Pinned[0] == b.Pinned[2])
	// Output:
	// notes: 3
	// first two shared: true
	// third shared: false
}
