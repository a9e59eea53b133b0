// Package mailer holds the core model of the personalization and delivery
// engine: recipients, templates, the message composer, the provider
// configuration sum type, and the Sender contract that every transport
// adapter implements.
//
// The flow for one recipient is:
//
//	tmpl := mailer.Template{Subject: "Hi {{prenom}}", Body: "Ref: {{numero}}"}
//	composer := mailer.NewComposer()
//	email := composer.Compose(tmpl, recipient, defaultImage, recipient.Images)
//	err := sender.Send(ctx, email)
//
// Compose always succeeds and produces a message with a plain-text part
// (the personalized body verbatim, so filters that reject HTML-only mail
// still find real content) and an HTML part referencing each image by
// content ID. Transport adapters live in the smtp, resend and gmail
// subpackages; batch iteration lives in pkg/dispatch.
package mailer
