package model_test

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/dropbox2slack/internal/model"
)

var _ = Describe("FileInfo", func() {
	DescribeTable("accepts URL-shaped links",
		func(link string) {
			info, err := model.NewFileInfo("/target/ch/file", link)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.SharedLink).To(Equal(link))
		},
		Entry("https", "https://www.dropbox.com/s/abc/file.txt?dl=0"),
		Entry("http", "http://shared.link.com"),
		Entry("query and fragment", "https://example.com/a(b)~c#frag&x=1+2"),
	)

	DescribeTable("rejects anything else with a ValidationError",
		func(link string) {
			_, err := model.NewFileInfo("/target/ch/file", link)
			var vErr *model.ValidationError
			Expect(errors.As(err, &vErr)).To(BeTrue())
			Expect(vErr.Field).To(Equal("shared_link"))
			Expect(vErr.Value).To(Equal(link))
		},
		Entry("empty", ""),
		Entry("no scheme", "www.dropbox.com/s/abc"),
		Entry("ftp", "ftp://files.example.com/x"),
		Entry("scheme only", "https://"),
	)

	It("renders a Slack link token with the path as text", func() {
		info, err := model.NewFileInfo("/target/ch/file", "https://shared.link.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(info.LinkToken()).To(Equal("<https://shared.link.com|/target/ch/file>"))
	})
})

var _ = Describe("ChannelFiles", func() {
	It("creates channels on first insert and keeps insertion order", func() {
		files := model.NewChannelFiles()
		Expect(files.Len()).To(Equal(0))

		files.Add("b", model.FileInfo{Filepath: "/t/b/1", SharedLink: "https://x/1"})
		files.Add("a", model.FileInfo{Filepath: "/t/a/1", SharedLink: "https://x/2"})
		files.Add("b", model.FileInfo{Filepath: "/t/b/2", SharedLink: "https://x/3"})

		Expect(files.Channels()).To(Equal([]string{"b", "a"}))
		Expect(files.Files("b")).To(Equal([]model.FileInfo{
			{Filepath: "/t/b/1", SharedLink: "https://x/1"},
			{Filepath: "/t/b/2", SharedLink: "https://x/3"},
		}))
		Expect(files.FileCount()).To(Equal(3))
	})

	It("returns nil for an unknown channel", func() {
		Expect(model.NewChannelFiles().Files("missing")).To(BeNil())
	})

	It("does not expose its internal ordering slice", func() {
		files := model.NewChannelFiles()
		files.Add("a", model.FileInfo{})
		channels := files.Channels()
		channels[0] = "mutated"
		Expect(files.Channels()).To(Equal([]string{"a"}))
	})
})

var _ = Describe("OutboundMessage", func() {
	It("joins the channel's file tokens in order into one field", func() {
		msg := model.NewOutboundMessage("channel1", []model.FileInfo{
			{Filepath: "p1", SharedLink: "https://u1"},
			{Filepath: "p2", SharedLink: "https://u2"},
		})

		Expect(msg.Channel).To(Equal("channel1"))
		Expect(msg.Attachments).To(HaveLen(1))
		Expect(msg.Attachments[0].Fallback).To(Equal(model.MessageFallback))
		Expect(msg.Attachments[0].Color).To(Equal("#0062ff"))
		Expect(msg.Attachments[0].Fields).To(Equal([]model.Field{
			{Title: model.MessageTitle, Value: "<https://u1|p1>\n<https://u2|p2>"},
		}))
	})

	It("encodes to the incoming-webhook payload shape", func() {
		msg := model.NewOutboundMessage("channel1", []model.FileInfo{
			{Filepath: "/target/channel1/file", SharedLink: "https://shared.link.com"},
		})

		body, err := json.Marshal(msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(MatchJSON(`{
			"channel": "channel1",
			"attachments": [{
				"fallback": "Dropboxが更新されました。",
				"color": "#0062ff",
				"fields": [{
					"title": "以下のファイルが更新されました。",
					"value": "<https://shared.link.com|/target/channel1/file>"
				}]
			}]
		}`))
	})

	It("omits the channel field once the channel is dropped", func() {
		msg := model.NewOutboundMessage("missing", []model.FileInfo{{Filepath: "p", SharedLink: "https://u"}})

		body, err := json.Marshal(msg.WithoutChannel())
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(body, &decoded)).To(Succeed())
		Expect(decoded).NotTo(HaveKey("channel"))
		Expect(decoded).To(HaveKey("attachments"))
		Expect(msg.Channel).To(Equal("missing"))
	})
})
