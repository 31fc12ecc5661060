package serial

import (
	"bytes"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "fake/serial",
})

// FakeSerial is an in-memory serial port. Everything written to it can be read
// back from Written; reads are served from whatever was passed to New.
type FakeSerial struct {
	in      *bytes.Reader
	Written bytes.Buffer
	Closed  bool
}

func New(in []byte) *FakeSerial {
	return &FakeSerial{in: bytes.NewReader(in)}
}

func (s *FakeSerial) Read(p []byte) (n int, err error) {
	log.Debugf("read %d bytes", len(p))
	if s.in == nil {
		return 0, nil
	}

	return s.in.Read(p)
}

func (s *FakeSerial) Write(p []byte) (n int, err error) {
	log.Debugf("write: %q", p)
	return s.Written.Write(p)
}

func (s *FakeSerial) Close() error {
	log.Debugf("close")
	s.Closed = true
	return nil
}
