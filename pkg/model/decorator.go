package model

// Decorator adjusts a parsed schema before it is rendered, for example to
// inject defaults a host application wants on every form.
type Decorator interface {
	Decorate(*FormSchema) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormSchema) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormSchema) error {
	return fn(form)
}
