// Package cerr builds errors that carry structured context fields alongside
// the usual cockroachdb/errors wrapping, so that the fields can later be
// logged or surfaced to a caller without re-parsing the message.
package cerr

import (
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
)

type F = log.Fields

type Context struct {
	fields F
	mark   error
	cause  error
}

func Field(key string, value any) Context {
	return Context{}.Field(key, value)
}

func Fields(fields F) Context {
	return Context{}.Fields(fields)
}

func Wrap(err error) Context {
	return Context{}.Wrap(err)
}

func Mark(mark error) Context {
	return Context{}.Mark(mark)
}

func Error(msg string) error {
	return Context{}.Error(msg)
}

func (c Context) Field(key string, value any) Context {
	return c.Fields(F{key: value})
}

func (c Context) Fields(fields F) Context {
	merged := F{}
	for k, v := range c.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	c.fields = merged
	return c
}

func (c Context) Wrap(err error) Context {
	c.cause = err
	return c
}

// Mark tags the produced error so that errors.Is(err, mark) holds.
func (c Context) Mark(mark error) Context {
	c.mark = mark
	return c
}

func (c Context) Error(msg string) error {
	var err error
	if c.cause != nil {
		err = errors.WrapWithDepth(1, c.cause, msg)
	} else {
		err = errors.NewWithDepth(1, msg)
	}

	if len(c.fields) > 0 {
		err = &fieldsError{cause: err, fields: c.fields}
	}

	if c.mark != nil {
		err = errors.Mark(err, c.mark)
	}

	return err
}

type fieldsError struct {
	cause  error
	fields F
}

func (f *fieldsError) Error() string { return f.cause.Error() }
func (f *fieldsError) Unwrap() error { return f.cause }

// CollectFields gathers the fields attached anywhere along the chain. Fields
// closer to the top of the chain win over the ones they wrap.
func CollectFields(err error) F {
	collected := F{}

	var chain []F
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if fe, ok := e.(*fieldsError); ok {
			chain = append(chain, fe.fields)
		}
	}

	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i] {
			collected[k] = v
		}
	}

	return collected
}

func Log(err error) {
	if err == nil {
		return
	}

	log.WithFields(CollectFields(err)).
		WithField("cause", errors.UnwrapAll(err).Error()).
		Error(err.Error())
}
