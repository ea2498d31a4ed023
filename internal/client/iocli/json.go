package iocli

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PrintJSON выводит JSON с отступами; не-JSON выводится как есть
func PrintJSON(out IO, data []byte) {
	if len(bytes.TrimSpace(data)) == 0 {
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		out.Println(string(data))
		return
	}
	out.Println(buf.String())
}

// PrintValue сериализует v и выводит с отступами
func PrintValue(out IO, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	out.Println(string(data))
	return nil
}
