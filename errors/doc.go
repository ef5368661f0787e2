/*
Package errors implements custom error interfaces for the drip module.

Each returned error is expected to wrap one of the root errors declared in
this package (or registered by an extension). The root error defines the
category and the numeric code of the issue, while wrapping adds context.
Test for a category with the root error's Is method:

  if errors.ErrNotFound.Is(err) { ... }

Errors carry a stack trace, attached at the deepest Wrap call, so that
%+v formatting reveals where the problem originated.
*/
package errors
