package otel_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/dropbox2slack/common/otel"
	"basegraph.app/dropbox2slack/core/config"
)

var _ = Describe("ParseHeaders", func() {
	It("parses comma separated pairs", func() {
		Expect(otel.ParseHeaders("Authorization=Bearer x, x-team = ops")).To(Equal(map[string]string{
			"Authorization": "Bearer x",
			"x-team":        "ops",
		}))
	})

	It("ignores malformed pairs", func() {
		Expect(otel.ParseHeaders("novalue,k=v")).To(Equal(map[string]string{"k": "v"}))
	})

	It("returns an empty map for an empty string", func() {
		Expect(otel.ParseHeaders("")).To(BeEmpty())
	})
})

var _ = Describe("Setup", func() {
	It("is disabled without an endpoint", func() {
		telemetry, err := otel.Setup(context.Background(), config.OTelConfig{})

		Expect(err).NotTo(HaveOccurred())
		Expect(telemetry).To(BeNil())
	})
})
