package paylog

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/clydefs/clydefs/pkg/codec"
)

// Log is the append-only file backing a Store: every Alloc/Free/Write
// is one pkg/codec record appended and fsynced before the call
// returns, matching the teacher's LogWriter's "sync immediately, no
// fsync-interval batching" default path.
type Log struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	codec  *codec.RecordCodec
}

// OpenLog opens (creating if necessary) the log file at path,
// positioned for append.
func OpenLog(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	return &Log{
		file:   file,
		writer: bufio.NewWriter(file),
		codec:  codec.NewRecordCodec(),
	}, nil
}

// Append encodes (key, value) as a record, writes it and fsyncs.
func (l *Log) Append(key, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := l.codec.Encode(key, value)
	if err != nil {
		return err
	}
	if _, err := l.writer.Write(data); err != nil {
		return err
	}
	if err := l.writer.Flush(); err != nil {
		return err
	}
	return l.file.Sync()
}

// ReadAll reads every record in the log from the beginning, in
// on-disk order, for Store.recover to replay.
func (l *Log) ReadAll() ([]*codec.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.writer.Flush(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.file.Name())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	c := codec.NewRecordCodec()
	var records []*codec.Record
	header := make([]byte, 20)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if err == io.EOF {
				break
			}
			return records, nil // a short trailing record is treated as the end of a crash-truncated log
		}
		keySize := leUint32(header[4:8])
		valueSize := leUint32(header[8:12])
		body := make([]byte, keySize+valueSize)
		if _, err := io.ReadFull(r, body); err != nil {
			break
		}
		full := append(append([]byte(nil), header...), body...)
		rec, err := c.Decode(full)
		if err != nil {
			break
		}
		if err := rec.Validate(); err != nil {
			break
		}
		records = append(records, rec)
	}
	return records, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Close flushes and closes the log file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.writer.Flush(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
