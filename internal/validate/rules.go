package validate

import "regexp"

var (
	digitRE  = regexp.MustCompile(`[0-9]`)
	symbolRE = regexp.MustCompile(`[!@#$%^&*]`)
)

// passwordComplexity requires at least one digit and one symbol from the
// fixed set. Both aspects share one message, matching the form copy.
func passwordComplexity(value string, _ Form) string {
	if !digitRE.MatchString(value) || !symbolRE.MatchString(value) {
		return "Password must contain at least one number and one symbol (!@#$%^&*)"
	}
	return ""
}

// RegistrationRules validates a new-account submission.
func RegistrationRules() []Rule {
	return []Rule{
		{Field: "name", Trim: true, Checks: []Check{
			MinLen(7, "Name must be at least 7 characters long"),
		}},
		{Field: "email", Trim: true, Checks: []Check{
			WellFormedEmail("Please provide a valid email address"),
		}},
		{Field: "confirmEmail", Trim: true, Checks: []Check{
			WellFormedEmail("Please provide a valid confirmation email"),
			EqualsEmailField("email", "Email addresses do not match"),
		}},
		{Field: "password", Checks: []Check{
			MinLen(8, "Password must be at least 8 characters long"),
			passwordComplexity,
		}},
		{Field: "confirmPassword", Checks: []Check{
			EqualsField("password", "Passwords do not match"),
		}},
	}
}

// LoginRules validates a login submission.
func LoginRules() []Rule {
	return []Rule{
		{Field: "email", Trim: true, Checks: []Check{
			WellFormedEmail("Please provide a valid email address"),
		}},
		{Field: "password", Checks: []Check{
			Required("Password is required"),
		}},
	}
}

// AccountUpdateRules validates an account edit submission. Password changes
// go through a separate flow, so only name and email are checked.
func AccountUpdateRules() []Rule {
	return []Rule{
		{Field: "name", Trim: true, Checks: []Check{
			MinLen(7, "Name must be at least 7 characters long"),
		}},
		{Field: "email", Trim: true, Checks: []Check{
			WellFormedEmail("Please provide a valid email address"),
		}},
	}
}

// ContactRules validates a contact form submission.
func ContactRules() []Rule {
	return []Rule{
		{Field: "subject", Trim: true, Checks: []Check{
			Required("Subject is required"),
			MinLen(3, "Subject must be at least 3 characters long"),
		}},
		{Field: "message", Trim: true, Checks: []Check{
			Required("Message is required"),
		}},
	}
}
