/*
DESCRIPTION
  dht_test.go tests reading the DHT sensor from an IIO device directory.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dht

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAttr(t *testing.T, dir, name, val string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(val), 0o644); err != nil {
		t.Fatalf("could not write %s: %v", name, err)
	}
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	writeAttr(t, dir, tempFile, "21500\n")
	writeAttr(t, dir, humidityFile, "45000\n")

	temp, hum, err := New(dir).Read()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if temp != 21.5 || hum != 45 {
		t.Errorf("unexpected reading: %v C, %v %%", temp, hum)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		temp  string
		hum   string
		write bool
	}{
		{name: "missing device"},
		{name: "bad temperature", temp: "abc", hum: "1000", write: true},
		{name: "bad humidity", temp: "1000", hum: "", write: true},
	}

	for _, test := range tests {
		dir := t.TempDir()
		if test.write {
			writeAttr(t, dir, tempFile, test.temp)
			writeAttr(t, dir, humidityFile, test.hum)
		}
		if _, _, err := New(dir).Read(); err == nil {
			t.Errorf("%s: expected error", test.name)
		}
	}
}
