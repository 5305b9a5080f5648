/*
Package syntax is the syntax tree model edited by swallow's transformations.

It describes a function-based, class-based source language: files contain
types, types contain methods, properties and fields, and bodies are made of
call, name-literal, await and blocking-wait expressions. Trees carry no
semantics; symbol resolution is the code model provider's job.

Spans are assigned by Format, which renders a file to text and records the
byte range of every node. Transformations edit a Clone of the tree and locate
their targets by the spans of the last Format, so a sequence of edits on one
document never invalidates the spans recorded before it started.
*/
package syntax
