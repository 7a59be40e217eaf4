package serialize_test

import (
	"testing"

	"github.com/graybat-go/graybat/errs"
	"github.com/graybat-go/graybat/serialize"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(SerializeTestSuite))

type SerializeTestSuite struct{}

func (s *SerializeTestSuite) TestByteCastRoundTrip(c *gc.C) {
	var bc serialize.ByteCast
	sent := [5]int32{1, 2, 3, 4, 5}

	wire, err := bc.Serialize(sent)
	c.Assert(err, gc.IsNil)

	var recv [5]int32
	buf, err := bc.Prepare(recv)
	c.Assert(err, gc.IsNil)
	c.Assert(len(buf), gc.Equals, len(wire))

	copy(buf, wire)
	c.Assert(bc.Restore(&recv, buf), gc.IsNil)
	c.Assert(recv, gc.DeepEquals, sent)
}

func (s *SerializeTestSuite) TestByteCastSizeMismatch(c *gc.C) {
	var bc serialize.ByteCast
	var recv [5]int32
	err := bc.Restore(&recv, make([]byte, 4))
	c.Assert(xerrors.Is(err, errs.SizeMismatch), gc.Equals, true)
}

func (s *SerializeTestSuite) TestForwardRoundTrip(c *gc.C) {
	var fwd serialize.Forward
	type payload struct {
		A int
		B string
	}
	sent := payload{A: 7, B: "hello"}

	wire, err := fwd.Serialize(sent)
	c.Assert(err, gc.IsNil)

	var recv payload
	c.Assert(fwd.Restore(&recv, wire), gc.IsNil)
	c.Assert(recv, gc.Equals, sent)
}
