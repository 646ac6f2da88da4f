package datalog_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/ssargent/oxdash/pkg/datalog"
	"github.com/ssargent/oxdash/pkg/value"
)

// ExampleDecode demonstrates writing a small container and decoding it again
func ExampleDecode() {
	var buf bytes.Buffer
	w, err := datalog.NewWriter(&buf, "")
	if err != nil {
		log.Fatal(err)
	}

	id, err := w.Start("NT:/SmartDashboard/Speed", datalog.TypeDouble, "", 0)
	if err != nil {
		log.Fatal(err)
	}
	if err := w.Append(id, 20000, value.Double(1.5)); err != nil {
		log.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}

	decoded, err := datalog.Decode(&buf)
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range decoded.Records {
		fmt.Printf("%s @%d = %v\n", r.Entry.Name, r.Timestamp, r.Value)
	}
	// Output:
	// NT:/SmartDashboard/Speed @20000 = 1.5
}
