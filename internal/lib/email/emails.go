package email

func (c *Client) SendWelcomeEmail(to, name string) error {
	return c.SendEmail(to, "Welcome to the Productivity Dashboard", TemplateWelcome, map[string]string{
		"UserName": name,
	})
}

func (c *Client) SendPasswordResetEmail(to, name, token, expiresIn string) error {
	return c.SendEmail(to, "Reset your password", TemplatePasswordReset, map[string]string{
		"UserName":  name,
		"Token":     token,
		"ExpiresIn": expiresIn,
	})
}

func (c *Client) SendDefaultPasswordEmail(to, name, password string) error {
	return c.SendEmail(to, "Your Productivity Dashboard account", TemplateDefaultPassword, map[string]string{
		"UserName": name,
		"Email":    to,
		"Password": password,
	})
}
