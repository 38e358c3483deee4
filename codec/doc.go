// Package codec binds protocols to compiled converters and serializes
// messages addressed by protocol and message, by name or by id.
//
// Load or LoadDirs register type and protocol descriptors; every named type
// is compiled once and every message is bound to the converter of its
// payload type:
//
//	c := codec.New(codec.WithLogger(log))
//	if err := c.LoadDirs([]string{"types"}, []string{"protocols"}); err != nil {
//		return err
//	}
//	data, err := c.Serialize("test_proto", "simple_struct_msg", value)
//	...
//	value, err := c.Deserialize(1, 0, data)
//
// Each MessageInfo and ProtocolInfo carries a hash of the layout it
// describes, so two peers can check that they agree on the wire format
// before exchanging payloads.
//
// A Codec is safe for concurrent use. Load replaces the loaded state
// atomically: a failing call leaves the codec as it was.
package codec
