package savcodec_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/arloliu/savcodec"
	"github.com/arloliu/savcodec/dict"
	"github.com/arloliu/savcodec/row"
)

func ExampleSession() {
	slots := []dict.VariableSlot{
		dict.Numeric("AGE"),
		dict.StringHead("NAME", 8),
	}
	session, err := savcodec.New(slots, nil)
	if err != nil {
		log.Fatal(err)
	}

	var data bytes.Buffer
	w, err := session.NewWriter(&data)
	if err != nil {
		log.Fatal(err)
	}
	_ = w.WriteRow([]row.Value{row.Number(36), row.Text("Ada")})
	_ = w.WriteRow([]row.Value{row.Missing(), row.Text("Grace")})
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("compressed bytes:", data.Len())

	r, err := session.NewReader(&data)
	if err != nil {
		log.Fatal(err)
	}
	for values, err := range r.All() {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(values)
	}

	// Output:
	// compressed bytes: 24
	// [36 "Ada     "]
	// [. "Grace   "]
}

func ExampleSession_CopySpool() {
	session, err := savcodec.New([]dict.VariableSlot{dict.Numeric("X")}, nil)
	if err != nil {
		log.Fatal(err)
	}

	var spooled bytes.Buffer
	w, err := session.NewSpoolWriter(&spooled)
	if err != nil {
		log.Fatal(err)
	}
	for i := range 1000 {
		_ = w.WriteRow([]row.Value{row.Number(float64(i % 50))})
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}

	// the case count is known now, so the file header could be written here
	var file bytes.Buffer
	cases, err := session.CopySpool(&file, &spooled)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("cases:", cases)
	fmt.Println("case data bytes:", file.Len())

	// Output:
	// cases: 1000
	// case data bytes: 1000
}
