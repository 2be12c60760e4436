package mcpbridge_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	stdiotest "testing/iotest"
	"time"

	"github.com/dogmatiq/iago/iotest"
	. "github.com/dogmatiq/mcpbridge"
	. "github.com/dogmatiq/mcpbridge/internal/fixtures"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ = Describe("func Serve()", func() {
	var (
		exchanger *ExchangerStub
		output    *bytes.Buffer
	)

	BeforeEach(func() {
		exchanger = &ExchangerStub{}
		output = &bytes.Buffer{}
	})

	It("writes one line for each non-blank input line, in order", func() {
		input := strings.NewReader(
			`{"jsonrpc": "2.0", "id": 1, "method": "ping"}` + "\n" +
				"\n" +
				"   \t\n" +
				`{"jsonrpc": "2.0", "id": 2, "method": "tools/list"}` + "\n" +
				`[1, 2, 3]` + "\n",
		)

		err := Serve(context.Background(), exchanger, input, output)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(output.String()).To(Equal(
			`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n" +
				`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n" +
				`[1,2,3]` + "\n",
		))
	})

	It("does not call the exchanger for blank lines", func() {
		exchanger.ExchangeFunc = func(
			context.Context,
			json.RawMessage,
		) (json.RawMessage, error) {
			Fail("unexpected call")
			return nil, nil
		}

		err := Serve(context.Background(), exchanger, strings.NewReader("\n \n\r\n"), output)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(output.Len()).To(BeZero())
	})

	It("passes each message to the exchanger compacted onto a single line", func() {
		var messages []string
		exchanger.ExchangeFunc = func(
			_ context.Context,
			msg json.RawMessage,
		) (json.RawMessage, error) {
			messages = append(messages, string(msg))
			return json.RawMessage(`{}`), nil
		}

		input := strings.NewReader("{ \"id\" : 1 ,\t\"params\": [ 1, 2 ] }\r\n\"<string>\"")

		err := Serve(context.Background(), exchanger, input, output)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(messages).To(Equal([]string{
			`{"id":1,"params":[1,2]}`,
			`"<string>"`,
		}))
		Expect(output.String()).To(Equal("{}\n{}\n"))
	})

	It("processes each line to completion before reading the next", func() {
		input := &recordingReader{
			lines: []string{`1`, `2`, `3`},
		}

		exchanger.ExchangeFunc = func(
			_ context.Context,
			msg json.RawMessage,
		) (json.RawMessage, error) {
			Expect(strconv.Itoa(input.reads)).To(Equal(string(msg)), "the next line was read before the exchange completed")
			return msg, nil
		}

		err := Serve(context.Background(), exchanger, input, output)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(output.String()).To(Equal("1\n2\n3\n"))
	})

	When("a line is not valid JSON", func() {
		It("writes an error response without calling the exchanger", func() {
			exchanger.ExchangeFunc = func(
				context.Context,
				json.RawMessage,
			) (json.RawMessage, error) {
				Fail("unexpected call")
				return nil, nil
			}

			err := Serve(context.Background(), exchanger, strings.NewReader("not json\n"), output)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(output.String()).To(Equal(
				`{"jsonrpc":"2.0","error":{"code":-32603,"message":"invalid character 'o' in literal null (expecting 'u')"},"id":null}` + "\n",
			))
		})

		It("continues with the next line", func() {
			input := strings.NewReader("{\n" + `{"id":1}` + "\n")

			err := Serve(context.Background(), exchanger, input, output)
			Expect(err).ShouldNot(HaveOccurred())

			lines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
			Expect(lines).To(HaveLen(2))
			Expect(lines[0]).To(MatchJSON(`{
				"jsonrpc": "2.0",
				"error": {
					"code": -32603,
					"message": "unexpected end of JSON input"
				},
				"id": null
			}`))
			Expect(lines[1]).To(Equal(`{"id":1}`))
		})
	})

	When("the exchanger returns an error", func() {
		BeforeEach(func() {
			exchanger.ExchangeFunc = func(
				_ context.Context,
				msg json.RawMessage,
			) (json.RawMessage, error) {
				if string(msg) == `"fail"` {
					return nil, TransportError(WithMessage("connection refused"))
				}
				return msg, nil
			}
		})

		It("writes an error response in place of the result", func() {
			err := Serve(context.Background(), exchanger, strings.NewReader(`"fail"`), output)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(output.String()).To(Equal(
				`{"jsonrpc":"2.0","error":{"code":-32603,"message":"connection refused"},"id":null}` + "\n",
			))
		})

		It("continues with the next line", func() {
			err := Serve(context.Background(), exchanger, strings.NewReader("\"fail\"\n\"ok\"\n\"fail\"\n"), output)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(output.String()).To(Equal(
				`{"jsonrpc":"2.0","error":{"code":-32603,"message":"connection refused"},"id":null}` + "\n" +
					`"ok"` + "\n" +
					`{"jsonrpc":"2.0","error":{"code":-32603,"message":"connection refused"},"id":null}` + "\n",
			))
		})

		It("uses the message of errors that are not bridge errors", func() {
			exchanger.ExchangeFunc = func(
				context.Context,
				json.RawMessage,
			) (json.RawMessage, error) {
				return nil, errors.New("<error>")
			}

			err := Serve(context.Background(), exchanger, strings.NewReader(`{}`), output)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(output.String()).To(MatchJSON(`{
				"jsonrpc": "2.0",
				"error": {
					"code": -32603,
					"message": "<error>"
				},
				"id": null
			}`))
		})
	})

	It("returns nil when the input is empty", func() {
		err := Serve(context.Background(), exchanger, strings.NewReader(""), output)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(output.Len()).To(BeZero())
	})

	It("returns an error if the input can not be read", func() {
		input := stdiotest.ErrReader(errors.New("<read error>"))

		err := Serve(context.Background(), exchanger, input, output)
		Expect(err).To(MatchError("<read error>"))
	})

	It("returns an error if the output can not be written", func() {
		err := Serve(
			context.Background(),
			exchanger,
			strings.NewReader(`{}`),
			iotest.NewFailer(nil, nil),
		)
		Expect(err).To(Equal(iotest.ErrWrite))
	})

	It("returns an error if an error response can not be written", func() {
		err := Serve(
			context.Background(),
			exchanger,
			strings.NewReader(`not json`),
			iotest.NewFailer(nil, nil),
		)
		Expect(err).To(Equal(iotest.ErrWrite))
	})

	It("returns an error if the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Serve(ctx, exchanger, strings.NewReader(`{}`), output)
		Expect(err).To(Equal(context.Canceled))
		Expect(output.Len()).To(BeZero())
	})

	It("returns an error if the context is canceled while waiting for input", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		input, writer := io.Pipe()
		defer writer.Close()

		time.AfterFunc(20*time.Millisecond, cancel)

		err := Serve(ctx, exchanger, input, output)
		Expect(err).To(Equal(context.Canceled))
		Expect(output.Len()).To(BeZero())
	})

	It("serves lines that arrive before the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		input, writer := io.Pipe()
		defer writer.Close()

		exchanger.ExchangeFunc = func(
			_ context.Context,
			msg json.RawMessage,
		) (json.RawMessage, error) {
			cancel()
			return msg, nil
		}

		go writer.Write([]byte("{}\n"))

		err := Serve(ctx, exchanger, input, output)
		Expect(err).To(Equal(context.Canceled))
		Expect(output.String()).To(Equal("{}\n"))
	})

	It("writes the output line of an exchange that is canceled before returning", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		exchanger.ExchangeFunc = func(
			ctx context.Context,
			_ json.RawMessage,
		) (json.RawMessage, error) {
			cancel()
			return nil, TransportError(WithCause(ctx.Err()))
		}

		err := Serve(ctx, exchanger, strings.NewReader("{}\n{}\n"), output)
		Expect(err).To(Equal(context.Canceled))
		Expect(output.String()).To(Equal(
			`{"jsonrpc":"2.0","error":{"code":-32603,"message":"context canceled"},"id":null}` + "\n",
		))
	})

	When("a logger is configured", func() {
		var buffer *bytes.Buffer

		BeforeEach(func() {
			buffer = &bytes.Buffer{}
		})

		It("logs each exchange", func() {
			logger := zap.New(
				zapcore.NewCore(
					zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
					zapcore.AddSync(buffer),
					zapcore.DebugLevel,
				),
			)

			err := Serve(
				context.Background(),
				exchanger,
				strings.NewReader(`{"id":1,"method":"ping"}`+"\nnot json\n"),
				output,
				WithZapLogger(logger),
			)
			Expect(err).ShouldNot(HaveOccurred())

			Expect(buffer.String()).To(ContainSubstring(
				`call ping	{"request_size": 24, "request_id": "1", "response_size": 24}`,
			))
			Expect(buffer.String()).To(ContainSubstring(
				`exchange	{"request_size": 8, "error_code": -32603, "error_kind": "parse error", "error": "invalid character 'o' in literal null (expecting 'u')"}`,
			))
		})

		It("logs write errors", func() {
			logger := zap.New(
				zapcore.NewCore(
					zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
					zapcore.AddSync(buffer),
					zapcore.DebugLevel,
				),
			)

			err := Serve(
				context.Background(),
				exchanger,
				strings.NewReader(`{}`),
				iotest.NewFailer(nil, nil),
				WithExchangeLogger(NewZapExchangeLogger(logger)),
			)
			Expect(err).To(HaveOccurred())
			Expect(buffer.String()).To(ContainSubstring(`unable to write output line`))
		})
	})
})

// recordingReader is an io.Reader that returns one line per call to Read(),
// and records how many times it has been called.
type recordingReader struct {
	lines []string
	reads int
}

func (r *recordingReader) Read(p []byte) (int, error) {
	if len(r.lines) == 0 {
		return 0, io.EOF
	}

	r.reads++
	line := r.lines[0] + "\n"
	r.lines = r.lines[1:]

	return copy(p, line), nil
}
