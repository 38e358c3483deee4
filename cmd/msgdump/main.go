// msgdump encodes, decodes and inspects messgen payloads using type and
// protocol descriptors loaded from YAML directories.
package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/messgen"
	"github.com/wippyai/messgen/codec"
	"github.com/wippyai/messgen/schema"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	config      string
	types       []string
	protocols   []string
	format      string
	proto       string
	msg         string
	input       string
	hexInput    bool
	names       bool
	verbose     bool
	interactive bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var o options
	flagSet := pflag.NewFlagSet("msgdump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&o.config, "config", "", "YAML file with types, protocols, format and names defaults")
	flagSet.StringSliceVarP(&o.types, "types", "t", nil, "type descriptor directories")
	flagSet.StringSliceVarP(&o.protocols, "protocols", "p", nil, "protocol descriptor directories")
	flagSet.StringVarP(&o.format, "format", "f", "", "output format: json or cbor (decode), hex, dump or raw (encode)")
	flagSet.StringVar(&o.proto, "proto", "", "protocol name or id")
	flagSet.StringVar(&o.msg, "msg", "", "message name or id")
	flagSet.StringVar(&o.input, "input", "-", "input file, - for stdin")
	flagSet.BoolVar(&o.hexInput, "hex", false, "decode input given as hex text")
	flagSet.BoolVar(&o.names, "names", false, "render enum and bitset values by name")
	flagSet.BoolVarP(&o.verbose, "verbose", "v", false, "log loading details to stderr")
	flagSet.BoolVarP(&o.interactive, "interactive", "i", false, "browse messages and encode or decode interactively")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if o.config != "" {
		cfg, err := loadConfig(o.config)
		if err != nil {
			return err
		}
		if len(o.types) == 0 {
			o.types = cfg.Types
		}
		if len(o.protocols) == 0 {
			o.protocols = cfg.Protocols
		}
		if o.format == "" {
			o.format = cfg.Format
		}
		if !flagSet.Changed("names") {
			o.names = cfg.Names
		}
	}

	command := flagSet.Arg(0)
	if command == "" && !o.interactive {
		printUsage(stderr, flagSet)
		return fmt.Errorf("no command given")
	}
	if len(o.types) == 0 {
		return fmt.Errorf("no type directories given (use --types or --config)")
	}

	log := zap.NewNop()
	if o.verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer log.Sync()
	}
	schema.SetLogger(log.Named("schema"))

	c := codec.New(codec.WithLogger(log.Named("codec")))
	if err := c.LoadDirs(o.types, o.protocols); err != nil {
		return fmt.Errorf("load descriptors: %w", err)
	}

	if o.interactive {
		if f, ok := stdout.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(c, o.names)
	}

	switch command {
	case "decode":
		return runDecode(c, o, stdin, stdout)
	case "encode":
		return runEncode(c, o, stdin, stdout)
	case "types":
		return listTypes(c, stdout)
	case "protocols":
		return listProtocols(c, stdout)
	}
	return fmt.Errorf("unknown command %q", command)
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: msgdump [flags] <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  decode     decode a payload of --proto/--msg and print it (json, cbor)")
	fmt.Fprintln(w, "  encode     encode a JSON value as a payload of --proto/--msg (hex, dump, raw)")
	fmt.Fprintln(w, "  types      list registered types with class and hash")
	fmt.Fprintln(w, "  protocols  list protocols and messages with ids and hashes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}

// lookupMessage resolves --proto and --msg, each given by name or id.
func lookupMessage(c *codec.Codec, proto, msg string) (*codec.MessageInfo, error) {
	if proto == "" || msg == "" {
		return nil, fmt.Errorf("--proto and --msg are required")
	}

	var info *codec.ProtocolInfo
	var err error
	if id, convErr := strconv.ParseInt(proto, 10, 16); convErr == nil {
		info, err = c.ProtocolByID(messgen.ProtocolID(id))
	} else {
		info, err = c.ProtocolByName(proto)
	}
	if err != nil {
		return nil, err
	}

	if id, convErr := strconv.ParseInt(msg, 10, 16); convErr == nil {
		return c.MessageByID(info.ID, messgen.MessageID(id))
	}
	return c.MessageByName(info.Name, msg)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(bufio.NewReader(stdin))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func parseHex(text string) ([]byte, error) {
	clean := strings.Join(strings.Fields(text), "")
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}
	return data, nil
}

func runDecode(c *codec.Codec, o options, stdin io.Reader, stdout io.Writer) error {
	m, err := lookupMessage(c, o.proto, o.msg)
	if err != nil {
		return err
	}
	data, err := readInput(o.input, stdin)
	if err != nil {
		return err
	}
	if o.hexInput {
		if data, err = parseHex(string(data)); err != nil {
			return err
		}
	}

	value, err := c.Deserialize(m.ProtoID, m.ID, data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", m.Name, err)
	}

	switch o.format {
	case "", "json":
		out, err := json.MarshalIndent(toPlain(m.Converter, value, plainOptions{json: true, names: o.names}), "", "  ")
		if err != nil {
			return fmt.Errorf("render json: %w", err)
		}
		_, err = fmt.Fprintf(stdout, "%s\n", out)
		return err
	case "cbor":
		out, err := cborMode.Marshal(toPlain(m.Converter, value, plainOptions{names: o.names}))
		if err != nil {
			return fmt.Errorf("render cbor: %w", err)
		}
		_, err = stdout.Write(out)
		return err
	}
	return fmt.Errorf("format %q is not supported by decode", o.format)
}

func runEncode(c *codec.Codec, o options, stdin io.Reader, stdout io.Writer) error {
	m, err := lookupMessage(c, o.proto, o.msg)
	if err != nil {
		return err
	}
	data, err := readInput(o.input, stdin)
	if err != nil {
		return err
	}

	payload, err := encodeJSON(c, m, data)
	if err != nil {
		return err
	}

	switch o.format {
	case "", "hex":
		_, err = fmt.Fprintln(stdout, hex.EncodeToString(payload))
	case "dump":
		_, err = io.WriteString(stdout, hexDump(payload, dumpWidth(stdout)))
	case "raw":
		_, err = stdout.Write(payload)
	default:
		err = fmt.Errorf("format %q is not supported by encode", o.format)
	}
	return err
}

// encodeJSON serializes a JSON document as the payload of m.
func encodeJSON(c *codec.Codec, m *codec.MessageInfo, data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	value, err := fromJSON(m.Converter, doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Name, err)
	}
	payload, err := c.Serialize(m.ProtoName, m.Name, value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Name, err)
	}
	return payload, nil
}

func listTypes(c *codec.Codec, w io.Writer) error {
	reg := c.Registry()
	for _, name := range c.TypeNames() {
		conv, err := c.TypeConverter(name)
		if err != nil {
			return err
		}
		hash, err := reg.Hash(name)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-40s %-9s %016x\n", name, conv.Class(), hash); err != nil {
			return err
		}
	}
	return nil
}

func listProtocols(c *codec.Codec, w io.Writer) error {
	for _, p := range c.Protocols() {
		if _, err := fmt.Fprintf(w, "%s (proto_id %d) hash %016x\n", p.Name, p.ID, p.Hash); err != nil {
			return err
		}
		for _, m := range p.Messages {
			if _, err := fmt.Fprintf(w, "  %5d  %-32s %-40s %016x\n", m.ID, m.Name, m.TypeName, m.Hash); err != nil {
				return err
			}
		}
	}
	return nil
}

var cborMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("msgdump: CBOR encoder initialization failed: " + err.Error())
	}
	return mode
}()
