package iocli

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Buffer IO в памяти: ответы на запросы берутся из заранее заданных очередей,
// вывод накапливается. Используется в тестах команд.
type Buffer struct {
	out       bytes.Buffer
	inputs    []string
	passwords []string
	mu        sync.Mutex
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// WithInputs добавляет ответы для ReadInput
func (b *Buffer) WithInputs(inputs ...string) *Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inputs = append(b.inputs, inputs...)
	return b
}

// WithPasswords добавляет ответы для ReadPassword
func (b *Buffer) WithPasswords(passwords ...string) *Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.passwords = append(b.passwords, passwords...)
	return b
}

func (b *Buffer) Println(a ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = fmt.Fprintln(&b.out, a...)
}

func (b *Buffer) Printf(format string, a ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = fmt.Fprintf(&b.out, format, a...)
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out.Write(p)
}

func (b *Buffer) ReadInput(prompt string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.WriteString(prompt)
	return pop(&b.inputs)
}

func (b *Buffer) ReadPassword(prompt string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.WriteString(prompt)
	b.out.WriteString("\n")
	return pop(&b.passwords)
}

// String весь накопленный вывод
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out.String()
}

// Reset очищает вывод
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.Reset()
}

func pop(queue *[]string) (string, error) {
	if len(*queue) == 0 {
		return "", io.EOF
	}
	v := (*queue)[0]
	*queue = (*queue)[1:]
	return v, nil
}
