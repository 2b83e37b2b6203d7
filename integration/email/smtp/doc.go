// Package smtp implements email.EmailSender over SMTP using gomail.
//
// TLSMode selects the transport: "tls" dials with implicit TLS (port 465),
// "starttls" and "plain" dial in clear text and upgrade with STARTTLS when
// the server offers it. Authentication is used only when Username is set.
package smtp
