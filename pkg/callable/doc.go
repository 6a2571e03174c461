// Package callable invokes remote HTTPS callable functions, such as the
// certificate generator, with retries, optional rate limiting, a circuit
// breaker and result validation against a JSON schema.
//
//	c, err := callable.New(cfg.BaseURL, callable.WithConfig(cfg))
//	if err != nil {
//		return err
//	}
//	var res struct {
//		Success bool   `json:"success"`
//		Message string `json:"message"`
//	}
//	err = c.Call(ctx, "generateCertificate", map[string]string{"applicationId": id}, &res)
package callable
