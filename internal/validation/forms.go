package validation

// Field names as they appear in request bodies and in error maps.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldAddress         = "address"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldRole            = "role"
	FieldOwnerName       = "ownerName"
	FieldOwnerEmail      = "ownerEmail"
	FieldStoreEmail      = "storeEmail"
	FieldRating          = "rating"
)

// Form identifies which set of rules applies to a submission.
type Form string

const (
	FormRegister Form = "register"
	FormLogin    Form = "login"
	FormAddUser  Form = "add-user"
	FormAddStore Form = "add-store"
	FormRating   Form = "rating"
)

// Errors maps a field name to its message. A field without a key is valid.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool { return len(e) == 0 }

func (e Errors) check(field, msg string) {
	if msg != "" {
		e[field] = msg
	}
}

// Validate runs the rules of form over values. Missing keys are checked as
// empty strings; values are never trimmed or case-folded.
func Validate(form Form, values map[string]string) Errors {
	switch form {
	case FormRegister:
		return Registration(values)
	case FormLogin:
		return Login(values)
	case FormAddUser:
		return AddUser(values)
	case FormAddStore:
		return AddStore(values)
	case FormRating:
		return RatingForm(values)
	}
	return Errors{}
}

// Registration checks the self-service sign-up form.
func Registration(values map[string]string) Errors {
	errs := Errors{}
	errs.check(FieldName, Name("Name", values[FieldName]))
	errs.check(FieldAddress, Address(values[FieldAddress]))
	errs.check(FieldPassword, Password(values[FieldPassword]))
	errs.check(FieldConfirmPassword, ConfirmPassword(values[FieldPassword], values[FieldConfirmPassword]))
	errs.check(FieldEmail, Email("", values[FieldEmail]))
	return errs
}

// Login only requires both credentials to be present.
func Login(values map[string]string) Errors {
	errs := Errors{}
	errs.check(FieldEmail, Required("Email", values[FieldEmail]))
	errs.check(FieldPassword, Required("Password", values[FieldPassword]))
	return errs
}

// AddUser checks the administrator's user creation form.
func AddUser(values map[string]string) Errors {
	errs := Errors{}
	errs.check(FieldName, Name("Name", values[FieldName]))
	errs.check(FieldAddress, Address(values[FieldAddress]))
	errs.check(FieldPassword, Password(values[FieldPassword]))
	errs.check(FieldEmail, Email("", values[FieldEmail]))
	errs.check(FieldRole, Role(values[FieldRole]))
	return errs
}

// AddStore checks the administrator's store creation form. The store address
// may arrive as "email" or "storeEmail"; the error is keyed by whichever was sent.
func AddStore(values map[string]string) Errors {
	errs := Errors{}
	errs.check(FieldName, Name("Store name", values[FieldName]))
	errs.check(FieldAddress, Address(values[FieldAddress]))
	errs.check(FieldOwnerName, Name("Owner name", values[FieldOwnerName]))

	emailField := FieldEmail
	if _, ok := values[FieldStoreEmail]; ok {
		emailField = FieldStoreEmail
	}
	errs.check(emailField, Email("store", values[emailField]))
	errs.check(FieldOwnerEmail, Email("owner", values[FieldOwnerEmail]))
	return errs
}

// RatingForm checks a star rating submitted as text.
func RatingForm(values map[string]string) Errors {
	errs := Errors{}
	errs.check(FieldRating, RatingString(values[FieldRating]))
	return errs
}
