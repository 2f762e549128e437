package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/shivamsri07/mutisend-sdk/pkg/logging"
)

var _ = Describe("ConsoleFormatter", func() {
	var formatter *logging.ConsoleFormatter

	BeforeEach(func() {
		formatter = logging.NewConsoleFormatter()
		formatter.DisableColors = true
	})

	It("puts batch fields ahead of the others", func() {
		entry := &logrus.Entry{
			Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Level:   logrus.InfoLevel,
			Message: "Batch confirmed",
			Data: logrus.Fields{
				"gas_used": 30000,
				"tier":     "fast",
				"tx_hash":  "0xabc",
				"count":    2,
			},
		}

		out, err := formatter.Format(entry)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal(
			`2024-01-02T03:04:05Z INFO    Batch confirmed tx_hash="0xabc" tier="fast" count=2 gas_used=30000` + "\n"))
	})

	It("quotes error values", func() {
		entry := &logrus.Entry{
			Time:    time.Now(),
			Level:   logrus.WarnLevel,
			Message: "Failed to record executed batch",
			Data:    logrus.Fields{"error": errors.New("connection refused")},
		}

		out, err := formatter.Format(entry)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring(`error="connection refused"`))
		Expect(string(out)).To(ContainSubstring("WARNING"))
	})
})

var _ = Describe("New", func() {
	It("defaults to info level JSON output", func() {
		var buf bytes.Buffer
		logger, err := logging.New(&buf, "", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(logger.GetLevel()).To(Equal(logrus.InfoLevel))

		logger.Debug("hidden")
		logger.WithField("proxy", "0x1").Info("visible")

		var line map[string]interface{}
		Expect(json.Unmarshal(buf.Bytes(), &line)).To(Succeed())
		Expect(line).To(HaveKeyWithValue("msg", "visible"))
		Expect(line).To(HaveKeyWithValue("proxy", "0x1"))
	})

	It("selects the console formatter for pretty output", func() {
		logger, err := logging.New(&bytes.Buffer{}, "debug", "pretty")
		Expect(err).NotTo(HaveOccurred())
		Expect(logger.GetLevel()).To(Equal(logrus.DebugLevel))
		Expect(logger.Formatter).To(BeAssignableToTypeOf(&logging.ConsoleFormatter{}))
	})

	DescribeTable("rejects unknown settings",
		func(level, format string) {
			_, err := logging.New(&bytes.Buffer{}, level, format)
			Expect(err).To(HaveOccurred())
		},
		Entry("level", "loud", "json"),
		Entry("format", "info", "xml"),
	)
})
