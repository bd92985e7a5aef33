package trigger

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// MockTriggerPort implements TriggerPorter for testing
type MockTriggerPort struct {
	io.Reader
	io.WriteCloser
}

func (m *MockTriggerPort) Write(p []byte) (n int, err error) {
	return m.WriteCloser.Write(p)
}

// NewMockTriggerMux creates a TriggerMux instance backed by a mock port that
// emits mockLine periodically, simulating a specimen tripping the sensor.
func NewMockTriggerMux(mockLine []byte) *TriggerMux[*MockTriggerPort] {
	r, w := io.Pipe()
	f, err := os.CreateTemp(".", "mock_trigger_port")
	if err != nil {
		panic("failed to create temp file for mock trigger port: " + err.Error())
	}
	log.Printf("Writing mock trigger port received input at %s", f.Name())

	mockPort := &MockTriggerPort{
		Reader:      r,
		WriteCloser: f,
	}

	// generate data periodically to simulate trigger box input
	go func() {
		defer w.Close()
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			w.Write(mockLine)
		}
	}()

	return NewTriggerMux(mockPort)
}

// TestableTriggerPort implements TriggerPorter with configurable behaviour
// for testing. It provides control over reads, writes, and errors.
type TestableTriggerPort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port
	WriteBuffer *bytes.Buffer

	// ReadError is returned by the next Read call if set
	ReadError error

	// WriteError is returned by the next Write call if set
	WriteError error

	// Closed indicates whether Close was called
	Closed bool

	// BlockReads causes Read to block until data is added or Close is called
	BlockReads bool

	// readCond is used to signal blocked readers
	readCond *sync.Cond
}

// NewTestableTriggerPort creates a new TestableTriggerPort for testing.
func NewTestableTriggerPort() *TestableTriggerPort {
	tp := &TestableTriggerPort{
		ReadBuffer:  bytes.NewBuffer(nil),
		WriteBuffer: bytes.NewBuffer(nil),
	}
	tp.readCond = sync.NewCond(&tp.mu)
	return tp
}

// Read reads from the read buffer, optionally simulating errors.
func (t *TestableTriggerPort) Read(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Closed {
		return 0, errors.New("trigger port closed")
	}

	if t.ReadError != nil {
		err := t.ReadError
		t.ReadError = nil
		return 0, err
	}

	// If blocking reads are enabled and buffer is empty, wait for data
	if t.BlockReads && t.ReadBuffer.Len() == 0 {
		for !t.Closed && t.ReadBuffer.Len() == 0 {
			t.readCond.Wait()
		}
		if t.Closed {
			return 0, errors.New("trigger port closed")
		}
	}

	return t.ReadBuffer.Read(p)
}

// Write writes to the write buffer, optionally simulating errors.
func (t *TestableTriggerPort) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Closed {
		return 0, errors.New("trigger port closed")
	}

	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}

	return t.WriteBuffer.Write(p)
}

// Close marks the port as closed.
func (t *TestableTriggerPort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Closed = true
	t.readCond.Broadcast() // Wake up any blocked readers

	return nil
}

// AddReadData adds data to be returned by subsequent Read calls.
func (t *TestableTriggerPort) AddReadData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadBuffer.Write(data)
	t.readCond.Signal() // Wake up a blocked reader
}

// GetWrittenData returns all data written to the port.
func (t *TestableTriggerPort) GetWrittenData() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.WriteBuffer.Bytes()
}
