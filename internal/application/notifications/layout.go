package notifications

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// Layout wraps content in the shared PlotSure Connect HTML shell.
func Layout(contentHTML string) string {
	year := time.Now().Year()
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(135deg, #1e3a8a, #3b82f6); color: white; padding: 20px; text-align: center; }
    .content { padding: 20px; background: #f8fafc; }
    .highlight { background: white; padding: 15px; border-left: 4px solid #10b981; margin: 15px 0; }
    .footer { padding: 20px; text-align: center; color: #666; font-size: 13px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>PlotSure Connect</h1>
    </div>
    <div class="content">%s</div>
    <div class="footer">
      <p>Best regards,<br>The PlotSure Connect Team</p>
      <p>support@plotsureconnect.rw</p>
      <p>&copy; %d PlotSure Connect</p>
    </div>
  </div>
</body>
</html>`, contentHTML, year)
}

// esc escapes user-provided text for HTML bodies.
func esc(s string) string {
	return html.EscapeString(s)
}

// para escapes text and converts newlines to <br> for display inside a
// template block.
func para(s string) string {
	return strings.ReplaceAll(esc(s), "\n", "<br>")
}
