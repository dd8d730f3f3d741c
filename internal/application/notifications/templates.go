package notifications

import "fmt"

// Welcome greets a newly registered broker.
func Welcome(to, name string) Email {
	content := fmt.Sprintf(`
<h3>Hello %s,</h3>
<p>Welcome to PlotSure Connect! Your broker account is now active.</p>
<p>You can now publish verified land listings, upload supporting documents
and media, and manage customer inquiries from your dashboard.</p>`, esc(name))
	return Email{
		To: to, ToName: name,
		Subject: "Welcome to PlotSure Connect!",
		HTML:    Layout(content),
		Text:    fmt.Sprintf("Welcome to PlotSure Connect, %s! Your broker account is now active.", name),
	}
}

// InquiryConfirmation acknowledges a customer's inquiry.
func InquiryConfirmation(to, name, listingTitle string) Email {
	content := fmt.Sprintf(`
<h3>Hello %s,</h3>
<p>Thank you for your inquiry about <strong>%s</strong>.</p>
<p>Our team has received your message and will get back to you within 24 hours.</p>`, esc(name), esc(listingTitle))
	return Email{
		To: to, ToName: name,
		Subject: "We received your inquiry",
		HTML:    Layout(content),
		Text:    fmt.Sprintf("Hello %s, we received your inquiry about %q and will respond within 24 hours.", name, listingTitle),
	}
}

// InquiryBrokerAlert tells a broker a new inquiry arrived for their listing.
func InquiryBrokerAlert(to, brokerName, inquirerName, listingTitle, message string) Email {
	content := fmt.Sprintf(`
<h3>Hello %s,</h3>
<p>You have a new inquiry for <strong>%s</strong> from %s:</p>
<div class="highlight">%s</div>
<p>Please follow up from your dashboard.</p>`, esc(brokerName), esc(listingTitle), esc(inquirerName), para(message))
	return Email{
		To: to, ToName: brokerName,
		Subject: fmt.Sprintf("New Inquiry for %q", listingTitle),
		HTML:    Layout(content),
		Text:    fmt.Sprintf("New inquiry for %q from %s: %s", listingTitle, inquirerName, message),
	}
}

// ContactConfirmation acknowledges a contact-form submission.
func ContactConfirmation(to, name, subject string) Email {
	content := fmt.Sprintf(`
<h3>Hello %s,</h3>
<p>Thank you for contacting us about <strong>%s</strong>.</p>
<p>We will get back to you within 24-48 hours.</p>`, esc(name), esc(subject))
	return Email{
		To: to, ToName: name,
		Subject: "Thank you for contacting PlotSure Connect",
		HTML:    Layout(content),
		Text:    fmt.Sprintf("Hello %s, thanks for contacting us about %s. We will respond within 24-48 hours.", name, subject),
	}
}

// ContactAdminAlert notifies the configured admin mailbox of a new
// contact-form submission.
func ContactAdminAlert(to, name, email, phone, subject, priority, message string) Email {
	if phone == "" {
		phone = "Not provided"
	}
	content := fmt.Sprintf(`
<h3>New Contact Form Submission</h3>
<p><strong>From:</strong> %s (%s)</p>
<p><strong>Phone:</strong> %s</p>
<p><strong>Subject:</strong> %s</p>
<p><strong>Priority:</strong> %s</p>
<div class="highlight">%s</div>`, esc(name), esc(email), esc(phone), esc(subject), esc(priority), para(message))
	return Email{
		To:      to,
		Subject: fmt.Sprintf("New Contact Form Submission: %s", subject),
		HTML:    Layout(content),
		Text:    fmt.Sprintf("New contact from %s (%s): %s", name, email, message),
	}
}

// SubmissionResponse carries a staff response back to the submitter,
// quoting their original message.
func SubmissionResponse(to, name, subject, responseMessage, originalMessage string) Email {
	content := fmt.Sprintf(`
<h3>Hello %s,</h3>
<p>Thank you for reaching out to PlotSure Connect. Here is our response:</p>
<div class="highlight">%s</div>
<h4>Your original message</h4>
<p><strong>Subject:</strong> %s</p>
<p>%s</p>
<p>If you have any additional questions, please don't hesitate to contact us.</p>`,
		esc(name), para(responseMessage), esc(subject), para(originalMessage))
	return Email{
		To: to, ToName: name,
		Subject: fmt.Sprintf("Response to your inquiry: %s", subject),
		HTML:    Layout(content),
		Text:    fmt.Sprintf("Hello %s,\n\n%s\n\nYour original message: %s", name, responseMessage, originalMessage),
	}
}

// ListingVerified tells a broker their listing passed verification and is
// now live.
func ListingVerified(to, brokerName, listingTitle string) Email {
	content := fmt.Sprintf(`
<h3>Hello %s,</h3>
<p>Your listing <strong>%s</strong> has been verified and is now live.</p>
<p>Verified listings rank higher and display a verification badge.</p>`, esc(brokerName), esc(listingTitle))
	return Email{
		To: to, ToName: brokerName,
		Subject: fmt.Sprintf("Listing verified: %s", listingTitle),
		HTML:    Layout(content),
		Text:    fmt.Sprintf("Your listing %q has been verified and is now live.", listingTitle),
	}
}
