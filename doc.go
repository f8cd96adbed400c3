/*
Package procpin pins a named process to a set of logical CPUs by rewriting its
processor affinity mask.

A single [Controller.SetProcessAffinity] call performs one complete cycle:

  - resolve the executable name to a process ID using a fresh process
    snapshot ([FindProcess]);
  - open the process with only the rights needed to query and set its
    information;
  - read the process and system affinity [Mask];
  - do nothing when the process already has the desired mask, otherwise check
    that the desired mask only uses CPUs the system offers, and apply it.

The result is an [Outcome] telling whether the mask was updated or already in
place, or one of [ProcessNotFoundError], [InvalidMaskError], or [APIError].
Nothing is remembered between calls; callers wanting to keep a process pinned
simply call again on an interval.

All operating system access goes through the [Platform] interface.
[NativePlatform] returns the implementation for the build OS: Windows uses the
ToolHelp32 snapshot and kernel32 process affinity APIs, Linux uses procfs and
the sched_getaffinity(2)/sched_setaffinity(2) syscalls.

CPU sets can be written either as a [Mask] integer (see [ParseMask]) or as a
textual [List] of CPU ranges such as “0-3,8” (see [ParseList]).
*/
package procpin
